package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr               string
	ResolveConcurrency int64
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("RELCHECK_ADDR"),
		},
		&cli.Int64Flag{
			Name:        "resolve-concurrency",
			Usage:       "How many PRs of one batch are resolved in parallel (1 = sequential)",
			Value:       4,
			Destination: &c.ResolveConcurrency,
			Sources:     cli.EnvVars("RELCHECK_RESOLVE_CONCURRENCY"),
		},
	}
}
