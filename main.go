package main

import "github.com/servicehub/admin-backend/cmd"

func main() {
	cmd.Execute()
}
