// Command planctl builds, validates, serializes, and inspects a
// flowplan logical plan from the command line.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/tarungka/flowplan/constraint"
	"github.com/tarungka/flowplan/eventlog"
	"github.com/tarungka/flowplan/internal/config"
	"github.com/tarungka/flowplan/internal/logger"
	"github.com/tarungka/flowplan/operators"
	"github.com/tarungka/flowplan/plan"
	"github.com/tarungka/flowplan/storage/badgerstore"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "serialize":
		runSerialize(os.Args[2:])
	case "events":
		runEvents(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: planctl <build|validate|serialize|events> [flags]")
}

// buildDemoPlan constructs the same demo topology build/validate/serialize
// all operate on: a Kafka-shaped input feeding a file output.
func buildDemoPlan() (*plan.Plan, error) {
	p := plan.NewPlan()
	p.SetConstraintChecker(constraint.New())

	in, err := p.AddOperator("source", &operators.KafkaInputOperator{
		Config: operators.KafkaConfig{BootstrapServers: "localhost:9092", Topic: "events"},
	})
	if err != nil {
		return nil, err
	}
	out, err := p.AddOperator("sink", &operators.FileOutputOperator{Path: "/tmp/flowplan-demo.out"})
	if err != nil {
		return nil, err
	}

	outPort, _ := in.OutputPort("Out")
	inPort, _ := out.InputPort("In")
	s, err := p.AddStream(plan.NewStreamID())
	if err != nil {
		return nil, err
	}
	if err := s.SetSource(outPort); err != nil {
		return nil, err
	}
	if err := s.AddSink(inPort); err != nil {
		return nil, err
	}
	return p, nil
}

// openCheckpointStore opens (and registers on log) the badger-backed
// StorageAgent every subcommand that touches dt-conf.ser shares, so the
// same directory round-trips an operator stored by one invocation and
// retrieved by the next.
func openCheckpointStore(dir string) *badgerstore.Store {
	agent := badgerstore.New(&badgerstore.Config{Dir: dir})
	if err := agent.Open(); err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to open checkpoint store")
	}
	return agent
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPaths := fs.StringSlice("config", nil, "plan attribute YAML files to apply")
	out := fs.String("out", "dt-conf.ser", "path to write the serialized plan")
	storeDir := fs.String("checkpoint-dir", "", "badger directory for the checkpoint store (empty = in-memory)")
	fs.Parse(args)

	registerDemoOperators()
	p, err := buildDemoPlan()
	if err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to build demo plan")
	}
	if len(*configPaths) > 0 {
		ko, err := config.Load(*configPaths)
		if err != nil {
			logger.AdHocLogger.Fatal().Err(err).Msg("failed to load plan config")
		}
		if err := config.ApplyPlanAttributes(ko, p); err != nil {
			logger.AdHocLogger.Warn().Err(err).Msg("some plan attributes could not be applied")
		}
	}

	agent := openCheckpointStore(*storeDir)
	defer agent.Close()
	p.SetStorageAgent(agent)

	f, err := os.Create(*out)
	if err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to create output file")
	}
	defer f.Close()
	if err := p.Serialize(f); err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to serialize plan")
	}
	fmt.Printf("wrote plan to %s\n", *out)
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	in := fs.String("in", "dt-conf.ser", "path to a serialized plan, or empty to validate the demo plan")
	storeDir := fs.String("checkpoint-dir", "", "badger directory the plan's operators were checkpointed to (empty = in-memory, only valid with no --in)")
	fs.Parse(args)

	agent := openCheckpointStore(*storeDir)
	defer agent.Close()

	p := loadOrBuild(*in, agent)
	if err := p.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "plan is invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("plan is valid")
}

func runSerialize(args []string) {
	fs := flag.NewFlagSet("serialize", flag.ExitOnError)
	in := fs.String("in", "", "path to a serialized plan, or empty to serialize the demo plan")
	out := fs.String("out", "dt-conf.ser", "path to write the serialized plan")
	storeDir := fs.String("checkpoint-dir", "", "badger directory for the checkpoint store (empty = in-memory)")
	fs.Parse(args)

	agent := openCheckpointStore(*storeDir)
	defer agent.Close()

	p := loadOrBuild(*in, agent)
	p.SetStorageAgent(agent)

	f, err := os.Create(*out)
	if err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to create output file")
	}
	defer f.Close()
	if err := p.Serialize(f); err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to serialize plan")
	}
	fmt.Printf("wrote plan to %s\n", *out)
}

func runEvents(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	dbPath := fs.String("db", "events.db", "path to the event log database")
	fs.Parse(args)

	log, err := eventlog.Open(*dbPath)
	if err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to open event log")
	}
	defer log.Close()

	err = log.ReplayOperators(func(ts int64, ev plan.Event) error {
		fmt.Printf("%d\t%s\t%s\t%s\n", ts, ev.Header.Type, ev.OperatorName, ev.Reason)
		return nil
	})
	if err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to tail event log")
	}
}

// loadOrBuild loads the plan at path, or the demo plan if path is empty.
// agent rehydrates any operator Serialize delegated to a StorageAgent
// rather than inlining; it is unused when path's plan was serialized
// without one.
func loadOrBuild(path string, agent plan.StorageAgent) *plan.Plan {
	registerDemoOperators()
	if path == "" {
		p, err := buildDemoPlan()
		if err != nil {
			logger.AdHocLogger.Fatal().Err(err).Msg("failed to build demo plan")
		}
		return p
	}
	f, err := os.Open(path)
	if err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to open plan file")
	}
	defer f.Close()
	p, err := plan.DeserializePlan(f, agent)
	if err != nil {
		logger.AdHocLogger.Fatal().Err(err).Msg("failed to deserialize plan")
	}
	return p
}

func registerDemoOperators() {
	plan.RegisterOperatorType(&operators.KafkaInputOperator{})
	plan.RegisterOperatorType(&operators.FileOutputOperator{})
}
