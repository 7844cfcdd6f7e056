package shell

// ResolveEnvironment exposes resolveEnvironment for tests.
func ResolveEnvironment(sysEnv []string, cmdEnv map[string]string) []string {
	return resolveEnvironment(sysEnv, cmdEnv)
}

// NewExecutorWithEnviron creates an Executor with a fixed inherited environment.
func NewExecutorWithEnviron(env []string) *Executor {
	return &Executor{environ: func() []string { return env }}
}
