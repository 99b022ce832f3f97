// Command easycntk trains a feed-forward network on a
// numeric CSV file and reports evaluation metrics.
//
// Each CSV row holds input_dim features followed by the
// label components.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/byteshadow/EasyCNTK"
	"github.com/byteshadow/EasyCNTK/batch"
	"github.com/byteshadow/EasyCNTK/config"
	"github.com/byteshadow/EasyCNTK/evaluate"
	"github.com/byteshadow/EasyCNTK/fit"
	"github.com/byteshadow/EasyCNTK/sgd"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

func main() {
	var configPath string
	var o config.Overrides
	var inputDim int
	flag.StringVar(&configPath, "config", "", "YAML config file")
	flag.StringVar(&o.Data, "data", "", "training CSV file")
	flag.StringVar(&o.ModelOut, "out", "", "path to save the trained model")
	flag.IntVar(&o.Epochs, "epochs", 0, "number of epochs")
	flag.IntVar(&o.BatchSize, "batch", 0, "mini-batch size")
	flag.Float64Var(&o.LearningRate, "rate", 0, "learning rate")
	flag.StringVar(&o.Optimizer, "optimizer", "", "sgd, momentum, rmsprop or adam")
	flag.Int64Var(&o.Seed, "seed", 0, "shuffle seed (0 for random)")
	flag.IntVar(&inputDim, "input-dim", 0, "number of feature columns")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	cfg.ApplyOverrides(o)
	if inputDim > 0 {
		cfg.InputDim = inputDim
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	log.Println("Loading data...")
	rows, err := readRows(cfg.Data)
	if err != nil {
		return err
	}
	ds, err := batch.SplitFlat(rows, cfg.InputDim)
	if err != nil {
		return err
	}
	if !ds.Labeled() {
		return easycntk.ConfigErrorf("data has no label columns")
	}
	layout, err := ds.Validate()
	if err != nil {
		return err
	}
	outputDim := layout.HeadSizes[0]

	train, validation := ds, (*batch.Dataset)(nil)
	if cfg.ValidationRatio > 0 {
		train, validation = batch.HashSplit(ds, 1-cfg.ValidationRatio)
		log.Printf("train=%d validation=%d", train.Len(), validation.Len())
	}

	c := cfg.Creator()
	t, err := newTask(c, cfg, outputDim)
	if err != nil {
		return err
	}

	var supplier batch.Supplier
	if cfg.Shuffle {
		supplier, err = batch.Reshuffled(c, train, cfg.BatchSize, cfg.Seed)
	} else {
		supplier, err = batch.Static(c, train, cfg.BatchSize)
	}
	if err != nil {
		return err
	}

	opt, err := cfg.NewOptimizer()
	if err != nil {
		return err
	}
	sessions, err := fit.NewSessions(t.TrainModel, []easycntk.Cost{t.Loss},
		[]easycntk.Cost{t.Eval}, []*sgd.Optimizer{opt})
	if err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	stopChan := make(chan struct{})
	go func() {
		if _, ok := <-interrupt; ok {
			close(stopChan)
		}
	}()
	stop := fit.Channel(stopChan)
	if s := cfg.StopFunc(); s != nil {
		stop = fit.Any(stop, s)
	}

	fitCfg := &fit.Config{
		Sessions:         sessions,
		Supplier:         supplier,
		Epochs:           cfg.Epochs,
		RateRule:         cfg.RateRule(),
		Stop:             stop,
		MaxRetries:       cfg.MaxRetries,
		DegradeOnFailure: cfg.DegradeOnFailure,
	}
	if validation != nil && validation.Len() > 0 {
		fitCfg.Validation, err = batch.Static(c, validation, cfg.BatchSize)
		if err != nil {
			return err
		}
	}

	log.Println("Training (press ctrl+c once to stop)...")
	results, err := fit.Fit(fitCfg)
	if err != nil {
		return err
	}
	r := results[0]
	log.Printf("run=%s state=%s epochs=%d loss=%g eval=%g duration=%s degraded=%v", r.RunID,
		r.State, r.EpochCount, r.LossError, r.EvalError, r.Duration, r.Degraded)

	log.Println("Computing statistics...")
	evalSet := train
	if validation != nil && validation.Len() > 0 {
		evalSet = validation
	}
	evalStream, err := batch.Encode(c, evalSet, cfg.BatchSize)
	if err != nil {
		return err
	}
	src := evaluate.ModelSource(t.EvalModel, batch.Collect(evalStream), 0)
	if err := t.Report(src); err != nil {
		return err
	}

	if cfg.ModelOut != "" {
		if err := easycntk.Save(cfg.ModelOut, t.Net); err != nil {
			return err
		}
		log.Printf("saved model to %s (description in %s)", cfg.ModelOut,
			easycntk.DescriptionPath(cfg.ModelOut))
	}
	return nil
}

// A task bundles the network, loss functions and metric
// reporting for one kind of problem.
type task struct {
	Net easycntk.Net

	// TrainModel feeds the raw network; EvalModel applies
	// the output squashing the metrics expect.
	TrainModel easycntk.Model
	EvalModel  easycntk.Model

	Loss   easycntk.Cost
	Eval   easycntk.Cost
	Report func(evaluate.Source) error
}

func newTask(c anyvec.Creator, cfg *config.Config, outputDim int) (*task, error) {
	act, err := easycntk.ParseActivation(cfg.Activation)
	if err != nil {
		return nil, err
	}
	net := easycntk.Net{}
	inSize := cfg.InputDim
	for _, h := range cfg.Hidden {
		net = append(net, easycntk.NewDense(c, inSize, h), act)
		inSize = h
	}
	net = append(net, easycntk.NewDense(c, inSize, outputDim))

	t := &task{}
	switch cfg.Task {
	case config.TaskRegression:
		t.Net = net
		t.TrainModel = &easycntk.FeedForward{Net: net}
		t.EvalModel = t.TrainModel
		t.Loss = easycntk.MSE{}
		t.Eval = easycntk.MSE{}
		t.Report = reportRegression
	case config.TaskBinary, config.TaskMultiLabel:
		t.Net = net
		t.TrainModel = &easycntk.FeedForward{Net: net}
		squash := append(append(easycntk.Net{}, net...), easycntk.Sigmoid)
		t.EvalModel = &easycntk.FeedForward{Net: squash}
		t.Loss = easycntk.SigmoidCE{Average: true}
		t.Eval = squashed{easycntk.ThresholdError{Threshold: cfg.Threshold}}
		threshold := cfg.Threshold
		if cfg.Task == config.TaskBinary {
			t.Report = func(src evaluate.Source) error { return reportBinary(src, threshold) }
		} else {
			t.Report = func(src evaluate.Source) error { return reportMultiLabel(src, threshold) }
		}
	case config.TaskMultiClass:
		net = append(net, easycntk.LogSoftmax)
		t.Net = net
		t.TrainModel = &easycntk.FeedForward{Net: net}
		t.EvalModel = t.TrainModel
		t.Loss = easycntk.DotCost{}
		t.Eval = easycntk.ClassError{}
		t.Report = reportMultiClass
	default:
		return nil, easycntk.ConfigErrorf("unknown task: %s", cfg.Task)
	}
	return t, nil
}

// squashed applies a sigmoid to logits before handing
// them to an evaluation function.
type squashed struct {
	Eval easycntk.Cost
}

func (s squashed) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	return s.Eval.Cost(desired, anydiff.Sigmoid(actual), n)
}
