package main

import "github.com/gestion-comercial/backoffice/cmd/backoffice/cmd"

func main() {
	cmd.Execute()
}
