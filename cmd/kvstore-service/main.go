/*
Copyright 2025 The llm-d Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// The kvstore-service binary serves the remote prompt-cache gRPC API.
package main

import (
	"context"
	goflag "flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-kv-store-service/pkg/api/kvstorepb"
	"github.com/llm-d/llm-d-kv-store-service/pkg/config"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/metrics"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/resolver"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/service"
)

const (
	maxMessageSize      = 100 * 1024 * 1024
	streamWindowSize    = 64 * 1024 * 1024
	maxConcurrent       = 200
	metricsBeatInterval = time.Minute
)

type serverOptions struct {
	configPath         string
	host               string
	port               int
	threads            int
	logLevel           string
	transport          string
	enableSDKLogging   bool
	disableMultiNIC    bool
	disableMetrics     bool
	metricsEndpoint    string
	instrumentationKey string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &serverOptions{}

	cmd := &cobra.Command{
		Use:           "kvstore-service",
		Short:         "Remote prompt-cache gRPC service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "service-config.json", "path to the service configuration JSON file")
	flags.StringVar(&opts.host, "host", "0.0.0.0", "host to bind to")
	flags.IntVar(&opts.port, "port", 50051, "port to listen on")
	flags.IntVar(&opts.threads, "threads", 0, "number of stream workers (0 = CPU count)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: error, info, verbose")
	flags.StringVar(&opts.transport, "transport", "libcurl", "storage HTTP transport: winhttp, libcurl (accepted for deployment compatibility)")
	flags.BoolVar(&opts.enableSDKLogging, "enable-sdk-logging", false, "forward storage SDK diagnostics to the log")
	flags.BoolVar(&opts.disableMultiNIC, "disable-multi-nic", false, "disable round-robin source-interface binding")
	flags.BoolVar(&opts.disableMetrics, "disable-metrics", false, "disable RPC metrics recording")
	flags.StringVar(&opts.metricsEndpoint, "metrics-endpoint", "", "address to expose Prometheus metrics on (e.g. :9090)")
	flags.StringVar(&opts.instrumentationKey, "instrumentation-key", "", "telemetry instrumentation key (consumed by external exporters)")

	return cmd
}

// setupLogging maps the --log-level flag onto klog verbosity.
func setupLogging(level string) error {
	var verbosity int
	switch level {
	case "error":
		verbosity = 0
	case "info":
		verbosity = 2
	case "verbose":
		verbosity = 4
	default:
		return fmt.Errorf("unknown log level %q (want error, info or verbose)", level)
	}

	fs := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(fs)

	return fs.Set("v", strconv.Itoa(verbosity))
}

func run(cmd *cobra.Command, opts *serverOptions) error {
	if err := setupLogging(opts.logLevel); err != nil {
		return err
	}
	if opts.transport != "winhttp" && opts.transport != "libcurl" {
		return fmt.Errorf("unknown transport %q (want winhttp or libcurl)", opts.transport)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := klog.FromContext(ctx).WithName("kvstore-service")

	serviceConfig, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger.Info("service configuration loaded",
		"currentLocation", serviceConfig.CurrentLocation,
		"configurationStore", serviceConfig.ConfigurationStore,
		"configurationContainer", serviceConfig.ConfigurationContainer,
		"domainSuffix", serviceConfig.DomainSuffix)

	factory := resolver.NewAzureStoreFactory(opts.enableSDKLogging, !opts.disableMultiNIC)
	accountResolver, err := resolver.NewDatabaseResolver(&resolver.DatabaseConfig{
		ServiceConfig: serviceConfig,
		URLScheme:     "https",
	}, factory)
	if err != nil {
		return fmt.Errorf("failed to create account resolver: %w", err)
	}
	defer accountResolver.Close() //nolint:errcheck // process is exiting

	metrics.Register()
	metrics.SetEnabled(!opts.disableMetrics)
	if !opts.disableMetrics {
		metrics.StartMetricsLogging(ctx, metricsBeatInterval)
	}
	if opts.metricsEndpoint != "" {
		startMetricsEndpoint(ctx, opts.metricsEndpoint)
	}
	if opts.instrumentationKey != "" {
		logger.Info("instrumentation key set; telemetry export is handled by the deployment's collector")
	}

	threads := opts.threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	server := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
		grpc.MaxConcurrentStreams(maxConcurrent),
		grpc.InitialWindowSize(streamWindowSize),
		grpc.InitialConnWindowSize(streamWindowSize),
		grpc.NumStreamWorkers(uint32(threads)), //nolint:gosec // CPU count
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    10 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)

	kvstorepb.RegisterKVStoreServiceServer(server, service.NewService(nil, accountResolver))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	address := net.JoinHostPort(opts.host, strconv.Itoa(opts.port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down, draining outstanding RPCs")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		server.GracefulStop()
	}()

	logger.Info("server listening",
		"address", address,
		"threads", threads,
		"transport", opts.transport,
		"multiNIC", !opts.disableMultiNIC,
		"metrics", !opts.disableMetrics)

	if err := server.Serve(listener); err != nil {
		return fmt.Errorf("server terminated: %w", err)
	}

	logger.Info("server stopped")

	return nil
}

// startMetricsEndpoint exposes the Prometheus registry over HTTP.
func startMetricsEndpoint(ctx context.Context, address string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.FromContext(ctx).Error(err, "metrics endpoint failed", "address", address)
		}
	}()

	go func() {
		<-ctx.Done()
		srv.Close() //nolint:errcheck,gosec // best effort
	}()
}
