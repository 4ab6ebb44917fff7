package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mdelathouwer/gpio-monitor/internal/config"
	"github.com/mdelathouwer/gpio-monitor/internal/gpio"
	"github.com/mdelathouwer/gpio-monitor/internal/metrics"
	"github.com/mdelathouwer/gpio-monitor/internal/monitor"
	"github.com/mdelathouwer/gpio-monitor/internal/mqtt"
	"github.com/mdelathouwer/gpio-monitor/internal/status"
	"github.com/mdelathouwer/gpio-monitor/internal/web"
	"github.com/mdelathouwer/gpio-monitor/internal/ws"
)

const shutdownTimeout = 5 * time.Second

// serveCmd starts the monitor.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start monitoring GPIO lines",
	Long: `Start sampling the configured GPIO lines.

Every level change is sent to websocket subscribers on /ws and, when a
broker is configured, published to MQTT. The status page is served on /
with a JSON snapshot on /index.json and prometheus metrics on /metrics.

The monitor runs until interrupted (Ctrl+C) or it receives SIGTERM.

Example:
  gpio-monitor serve --lines 4,16 --interval 20ms
  gpio-monitor serve -c /etc/gpio-monitor.yaml --broker tcp://broker:1883`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addConfigFlags(serveCmd)
	addServeFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	reader, err := gpio.Open(gpio.Options{
		Backend: gpio.Backend(cfg.GPIO.Backend),
		Chip:    cfg.GPIO.Chip,
		Bias:    gpio.Bias(cfg.GPIO.Bias),
		Lines:   cfg.Lines,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	tracker := newTracker(cfg)

	var pub mqtt.Publisher
	if cfg.MQTT.Broker != "" {
		p := mqtt.NewRealPublisher(mqtt.Options{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			Buffer:      cfg.MQTT.Buffer,
			Logger:      logger,
			OnStatus:    tracker.SetMQTTConnected,
		})
		defer p.Close()
		pub = p
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return run(cfg, reader, tracker, pub, logger, sigCh)
}

func newTracker(cfg *config.Config) *status.Tracker {
	return status.NewTracker(time.Now(), status.Config{
		IntervalMs: cfg.Interval.Duration().Milliseconds(),
		Backend:    cfg.GPIO.Backend,
		Broker:     cfg.MQTT.Broker,
		HTTPAddr:   cfg.HTTP.Addr,
	})
}

// run wires the broadcasters, starts the HTTP server and sampling loop, and
// blocks until a signal arrives. pub may be nil when MQTT is disabled.
func run(cfg *config.Config, reader gpio.Reader, tracker *status.Tracker, pub mqtt.Publisher, logger *slog.Logger, sig <-chan os.Signal) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	hub := ws.NewHub(logger, ws.WithSubscriberHook(func(n int) {
		tracker.SetSubscribers(n)
		m.SetSubscribers(n)
	}))

	out := monitor.Fanout{tracker, m, hub}
	if pub != nil {
		out = append(out, pub)
	}

	mon, err := monitor.New(cfg.Lines, cfg.Interval.Duration(), reader, out)
	if err != nil {
		return err
	}

	var srv *web.Server
	if cfg.HTTP.Addr != "" {
		ln, err := net.Listen("tcp", cfg.HTTP.Addr)
		if err != nil {
			return fmt.Errorf("listen http: %w", err)
		}
		srv = web.New(cfg.HTTP.Addr, tracker, hub, reg)
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		logger.Info("http server listening", "addr", ln.Addr().String())
	}

	// Register early so STARTUP lists the lines; Start registers again
	// before the first pass.
	tracker.Register(mon.Lines())
	publishSystem(pub, tracker, logger, "STARTUP", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := mon.Start(ctx)

	logger.Info("started",
		"lines", mon.Lines(),
		"interval", mon.Interval().String(),
		"backend", cfg.GPIO.Backend,
		"broker", cfg.MQTT.Broker,
	)

	s := <-sig
	logger.Info("shutting down", "signal", s.String())
	cancel()
	<-done

	// Stop accepting connections before dropping subscribers so no
	// websocket is upgraded after the hub has closed.
	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", "error", err)
		}
		cancelShutdown()
	}
	hub.Close()

	publishSystem(pub, tracker, logger, "SHUTDOWN", signalName(s))
	return nil
}

// publishSystem sends a lifecycle event carrying the full status snapshot.
// Failures are logged; they never stop the daemon.
func publishSystem(pub mqtt.Publisher, tracker *status.Tracker, logger *slog.Logger, event, reason string) {
	if pub == nil {
		return
	}
	if cs, ok := pub.(mqtt.ConnectionStatus); ok {
		tracker.SetMQTTConnected(cs.IsConnected())
	}
	snap := tracker.Snapshot()
	err := pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		logger.Warn("failed to publish system event", "event", event, "error", err)
		return
	}
	logger.Info("published system event", "event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
