// Package listener orchestrates a tunnel-and-webhook session: it supervises
// the tunnel provider, registers the discovered public URL as a webhook with
// the billing API, and tears the registration down on shutdown.
package listener

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/watzon/hooktail/internal/config"
	"github.com/watzon/hooktail/internal/registry"
	"github.com/watzon/hooktail/internal/tunnel"
)

// Service is a closed set of tunnel providers.
type Service string

const (
	// ServiceExpose runs the expose binary and scrapes its output for the
	// public URL.
	ServiceExpose Service = "expose"

	// ServiceNgrok runs the ngrok binary and discovers the public URL
	// through the agent's local inspection API.
	ServiceNgrok Service = "ngrok"

	// ServiceCustom uses a caller-supplied public URL; no subprocess.
	ServiceCustom Service = "custom"

	// ServiceTest validates configuration and exits without any network or
	// process activity.
	ServiceTest Service = "test"
)

var ErrUnknownService = errors.New("unknown service")

// ParseService maps a CLI argument to a Service.
func ParseService(s string) (Service, error) {
	switch Service(s) {
	case ServiceExpose, ServiceNgrok, ServiceCustom, ServiceTest:
		return Service(s), nil
	}
	return "", ErrUnknownService
}

// Registry is the webhook surface of the billing API the controller needs.
type Registry interface {
	CreateWebhook(ctx context.Context, callbackURL, secret string) (string, error)
	ListWebhooks(ctx context.Context) (map[string]string, error)
	DeleteWebhook(ctx context.Context, id string) error
}

// process is the slice of tunnel.Process the run loop observes.
type process interface {
	Running() bool
	Output() string
	Stop()
}

type processStarter func(ctx context.Context, name string, args []string) (process, error)

func startTunnelProcess(ctx context.Context, name string, args []string) (process, error) {
	return tunnel.Start(ctx, name, args, nil)
}

// Options selects what a single invocation does.
type Options struct {
	Service Service

	// URL is the pre-existing public base URL; required for ServiceCustom.
	URL string

	// Cleanup bulk-deletes orphaned webhooks on the provider's domain
	// instead of listening.
	Cleanup bool
}

// Controller owns one listen or cleanup run.
type Controller struct {
	cfg      *config.Config
	registry Registry
	opts     Options

	out          io.Writer
	pollInterval time.Duration
	startProcess processStarter
}

// Option configures a Controller.
type Option func(*Controller)

// WithOutput redirects the request-log lines (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(c *Controller) { c.out = w }
}

// WithPollInterval overrides the run-loop tick.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) { c.pollInterval = d }
}

// WithProcessStarter overrides how tunnel subprocesses are spawned.
func WithProcessStarter(fn processStarter) Option {
	return func(c *Controller) { c.startProcess = fn }
}

// New creates a Controller for one invocation.
func New(cfg *config.Config, reg Registry, opts Options, options ...Option) *Controller {
	c := &Controller{
		cfg:          cfg,
		registry:     reg,
		opts:         opts,
		out:          os.Stdout,
		pollInterval: time.Second,
		startProcess: startTunnelProcess,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// runContext holds the mutable state of a single run. It is owned by the
// controller for the duration of one invocation and discarded at exit.
type runContext struct {
	proc      process
	publicURL string
	webhookID string
	tornDown  bool
}

// Run executes the controller state machine and returns the process exit
// status. Cancelling ctx is the interrupt signal: the loop notices it on the
// next tick and runs teardown before returning.
func (c *Controller) Run(ctx context.Context) int {
	if err := config.ValidateForListen(c.cfg); err != nil {
		log.Error().Msg(strings.TrimRight(err.Error(), "\n"))
		return 1
	}

	if c.opts.Service == ServiceCustom && strings.TrimSpace(c.opts.URL) == "" {
		log.Error().Msg("The custom service requires --url")
		return 1
	}

	if c.opts.Service == ServiceTest {
		log.Info().Msg("Configuration looks good; nothing to do for the test service")
		return 0
	}

	if !c.cfg.IsLocal() {
		log.Error().
			Str("environment", c.cfg.Environment).
			Msg("Refusing to expose a non-local environment; set environment to local or development")
		return 1
	}

	if c.opts.Cleanup {
		return c.runCleanup(ctx)
	}

	switch c.opts.Service {
	case ServiceExpose:
		return c.runExpose(ctx)
	case ServiceNgrok:
		return c.runNgrok(ctx)
	case ServiceCustom:
		return c.runCustom(ctx)
	}

	log.Error().Str("service", string(c.opts.Service)).Msg("Unknown service")
	return 1
}

// exitReason says why the run loop stopped.
type exitReason int

const (
	reasonInterrupt exitReason = iota
	reasonProcessExit
	reasonError
)

// loop ticks at the poll interval until interrupted, until the supervised
// process (if any) dies, or until tick reports a fatal error. Each tick does
// at most one unit of work.
func (c *Controller) loop(ctx context.Context, rc *runContext, tick func(context.Context) error) exitReason {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return reasonInterrupt
		case <-ticker.C:
			if rc.proc != nil && !rc.proc.Running() {
				return reasonProcessExit
			}
			if err := tick(ctx); err != nil {
				return reasonError
			}
		}
	}
}

func (c *Controller) runExpose(ctx context.Context) int {
	rc := &runContext{}

	subdomain := uuid.New().String()[:8]
	proc, err := c.startProcess(ctx, "expose", []string{"share", c.cfg.App.URL, "--subdomain", subdomain})
	if err != nil {
		log.Error().Err(err).Msg("Failed to start expose")
		return 1
	}
	rc.proc = proc

	reason := c.loop(ctx, rc, func(ctx context.Context) error {
		if rc.publicURL != "" {
			return nil
		}
		u := tunnel.ExtractPublicURL(rc.proc.Output())
		if u == "" {
			return nil
		}
		return c.register(ctx, rc, u)
	})

	return c.finish(rc, reason)
}

func (c *Controller) runNgrok(ctx context.Context) int {
	rc := &runContext{}

	proc, err := c.startProcess(ctx, "ngrok", []string{"http", c.cfg.App.URL, "--host-header", "rewrite"})
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok")
		return 1
	}
	rc.proc = proc

	agent := tunnel.NewAgentClient(c.cfg.Tunnel.InspectionURL)
	tail := tunnel.NewLogTail(agent, c.out)

	reason := c.loop(ctx, rc, func(ctx context.Context) error {
		if rc.publicURL == "" {
			u, err := agent.PublicURL(ctx)
			if err != nil {
				log.Debug().Err(err).Msg("Tunnel URL not discoverable yet")
				return nil
			}
			if u == "" {
				return nil
			}
			return c.register(ctx, rc, u)
		}

		if err := tail.Poll(ctx); err != nil {
			log.Debug().Err(err).Msg("Request log poll failed")
		}
		return nil
	})

	return c.finish(rc, reason)
}

func (c *Controller) runCustom(ctx context.Context) int {
	rc := &runContext{}

	if err := c.register(ctx, rc, c.opts.URL); err != nil {
		return 1
	}

	// No subprocess to watch; hold until interrupted.
	reason := c.loop(ctx, rc, func(context.Context) error { return nil })

	return c.finish(rc, reason)
}

// register creates the webhook for the discovered tunnel URL. Failure is
// fatal to the run; the tunnel is not retried.
func (c *Controller) register(ctx context.Context, rc *runContext, tunnelURL string) error {
	callbackURL := strings.TrimRight(tunnelURL, "/") + "/" + c.cfg.Webhook.Path + "/webhook"

	secret := c.cfg.Webhook.Secret
	if secret == "" {
		secret = registry.GenerateSecret()
	}

	id, err := c.registry.CreateWebhook(ctx, callbackURL, secret)
	if err != nil {
		log.Error().Err(err).Str("url", callbackURL).Msg("Webhook registration failed")
		return err
	}

	rc.publicURL = tunnelURL
	rc.webhookID = id

	log.Info().
		Str("id", id).
		Str("url", callbackURL).
		Msg("Webhook registered; forwarding events until interrupted")

	return nil
}

// finish maps the loop's exit reason to a process exit status, running
// teardown where the state machine calls for it.
func (c *Controller) finish(rc *runContext, reason exitReason) int {
	switch reason {
	case reasonInterrupt:
		c.teardown(rc)
		if rc.proc != nil {
			rc.proc.Stop()
		}
		return 0

	case reasonProcessExit:
		// Only an interrupt triggers teardown; a dead tunnel leaves the
		// webhook registered remotely.
		if rc.webhookID != "" {
			log.Warn().
				Str("id", rc.webhookID).
				Msg("Tunnel process exited; webhook is still registered remotely. Run with --cleanup to remove it")
		} else {
			log.Error().Msg("Tunnel process exited before a public URL was discovered")
		}
		return 1

	default:
		if rc.proc != nil {
			rc.proc.Stop()
		}
		return 1
	}
}

// teardown deletes the active webhook, at most once per run. The id is
// cleared only after the API confirms deletion.
func (c *Controller) teardown(rc *runContext) {
	if rc.tornDown {
		return
	}
	rc.tornDown = true

	if rc.webhookID == "" {
		return
	}

	// The interrupt already cancelled the run context; give the deletion its
	// own bounded one.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.registry.DeleteWebhook(ctx, rc.webhookID); err != nil {
		log.Error().
			Err(err).
			Str("id", rc.webhookID).
			Msg("Failed to delete webhook; run with --cleanup to remove it")
		return
	}

	log.Info().Str("id", rc.webhookID).Msg("Webhook removed")
	rc.webhookID = ""
}
