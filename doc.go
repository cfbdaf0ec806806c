// Package herald provides the front end of a command-line program: option
// and operand parsing, generated help text, a leveled console logger and a
// loader for test configuration files made of named groups.
//
// # Architecture Overview
//
// Herald consists of four integrated subsystems:
//  1. **Option/Operand Parser**: short and long flags, clusters, defaults, restricted value sets and validators
//  2. **Help Renderer**: mission statement, description, aligned option tables and help topics
//  3. **Stdio Logger**: five levels routed to an output and an error stream, backed by zap
//  4. **Config Loader**: discovery, evaluation, merge and filtering of configuration groups
//
// # Parsing Arguments
//
//	cli := herald.New()
//	logger := cli.CreateLogger(os.Stdout, os.Stderr)
//	cli.AddHelpOption("Runs the test suite.", "", herald.HelpTopic{Name: "reporters", Text: "..."})
//	port := cli.Opt("-p", "--port", "Port to listen on.", herald.OptionConfig{
//		DefaultValue: "1111",
//		Validators:   []herald.Validator{herald.Integer("")},
//	})
//	if err := cli.ParseArgs(os.Args[1:]); err != nil {
//		os.Exit(herald.ExitCode(err))
//	}
//	logger.Info("listening on", port.Value)
//
// ParseArgs reports every problem to the error stream before returning an
// *ExitError. Help output returns an *ExitError with code 0.
//
// # Logging
//
// Levels are ordered error, warn, log, info, debug. The default level is
// log; -l/--log-level picks another one and every -v raises it by one step.
// Debug, info and log messages go to the output stream, warnings and errors
// to the error stream.
//
// # Configuration Groups
//
// AddConfigOption registers -c/--config, -g/--group, -e/--environment and
// -t/--tests. LoadConfig then finds the configuration (explicit paths, glob
// patterns or an upward search for <base>.hcl, test/<base>.hcl,
// spec/<base>.hcl and the YAML and JSON equivalents), evaluates every file,
// concatenates their groups in file order and filters them:
//
//	group "Browser tests" {
//	  environment = "browser"
//	  sources     = ["src/**/*.js"]
//	  tests       = ["test/browser/**/*-test.js"]
//	}
//
// Group.Resolve expands the patterns of a group into a ResourceSet whose
// load path lists libs, sources, test helpers and tests in that order.
//
// Supported formats:
//   - HCL (.hcl) - evaluated, with env, config_dir and string functions
//   - YAML (.yml, .yaml) - mapping of group name to definition
//   - JSON (.json) - mapping of group name to definition
//
// Additional formats can be added with RegisterParser.
//
// Repository: https://github.com/agilira/herald
package herald
