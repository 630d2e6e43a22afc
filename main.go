package main

import "github.com/ValentinKolb/dcodec/cmd"

func main() {
	cmd.Execute()
}
