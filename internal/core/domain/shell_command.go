package domain

// ShellCommand is a fully resolved shell invocation handed to an executor.
type ShellCommand struct {
	// Shell is the interpreter invoked as "<Shell> -c <Script>".
	Shell string
	// Script is the command string passed to the shell verbatim.
	Script string
	// Env overrides entries of the parent environment.
	Env map[string]string
	// Stdin is written to the child's standard input when Interactive is false.
	Stdin []byte
	// Interactive attaches the parent's stdin, stdout and stderr directly.
	Interactive bool
	// Dir is the working directory. Empty means the current directory.
	Dir string
}
