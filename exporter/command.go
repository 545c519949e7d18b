package exporter

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/PaulVMo/miner-exporter/miner"
)

func setupLogger(logOutput string) {
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	})

	if logOutput == "" {
		logOutput = os.Getenv("LOG_OUTPUT")
	}
	if logOutput == "" || logOutput == "console" || logOutput == "stdout" {
		log.SetOutput(os.Stdout)
	} else if logOutput == "stderr" {
		log.SetOutput(os.Stderr)
	} else {
		file, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			panic(err)
		}
		log.SetOutput(file)
	}

	envLogLevel := os.Getenv("LOG_LEVEL")
	switch envLogLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func watchConfig(rootCtx context.Context, yamlPath string, collector *Collector) {
	log.Infof("watch the config %s", yamlPath)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		panic(err)
	}
	defer watcher.Close()

	err = watcher.Add(yamlPath)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			log.Debugf("config watcher done")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Write == fsnotify.Write {
				log.Infof("watch config, file %s changed", yamlPath)
				cfg, err := ConfigFromFile(event.Name)
				if err != nil {
					log.Warnf("error config %s", err)
				} else {
					collector.SetConfig(cfg)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("config watch error %s", err)
		}
	}
}

// collectOnce supervises a single cycle: a panicking cycle is logged and
// swallowed so the loop itself never dies.
func collectOnce(rootCtx context.Context, collector *Collector) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("stats loop failure: %v", r)
		}
	}()
	collector.Collect(rootCtx)
}

func runLoop(rootCtx context.Context, collector *Collector) {
	for {
		collectOnce(rootCtx, collector)

		// sleep the full period regardless of how long the cycle took
		period := time.Duration(collector.Config().UpdatePeriod) * time.Second
		select {
		case <-rootCtx.Done():
			return
		case <-time.After(period):
		}
	}
}

func CommandStart() {
	exporterFlags := flag.NewFlagSet("miner-exporter", flag.ExitOnError)
	pYamlPath := exporterFlags.String("f", "", "path to config yaml, optional")
	pWatchConfig := exporterFlags.Bool("w", false, "watch config changes using fsnotify")
	pLogfile := exporterFlags.String("log", "", "path to log output, default is stdout")

	exporterFlags.Parse(os.Args[1:])

	setupLogger(*pLogfile)

	cfg, err := ConfigFromFile(*pYamlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed, %s\n", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	client := miner.NewRPCClient(cfg.JsonrpcAddress)
	collector := NewCollector(client, cfg, metrics)

	go StartMetricsServer(rootCtx, fmt.Sprintf(":%d", cfg.Port), registry)

	if *pWatchConfig && *pYamlPath != "" {
		go watchConfig(rootCtx, *pYamlPath, collector)
	}

	log.Infof("start polling %s every %d seconds", cfg.JsonrpcAddress, cfg.UpdatePeriod)
	runLoop(rootCtx, collector)
}
