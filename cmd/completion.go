package cmd

import (
	"flag"

	"github.com/etnz/cryptofund/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the cfund command line for shell completion.
//
// Flags are collected from the commands themselves, so they never drift.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	root.Flags["config"] = predict.Files("*.yaml")

	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}

	root.Sub["cache"].Args = predict.Set{"info", "clear"}
	if names, err := docs.Names(); err == nil {
		root.Sub["topic"].Args = predict.Set(names)
	}
	return root
}

// flagPredictors predicts nothing for flag values, but lets flag names be completed.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		flags[f.Name] = predict.Nothing
	})
	return flags
}
