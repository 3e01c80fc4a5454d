// Command cfb8 encrypts and decrypts files with the natives cipher core.
package main

import "github.com/TheusHen/natives/cmd/cfb8/cmd"

func main() {
	cmd.Execute()
}
