package listener

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// providerDomains maps each subprocess-backed provider to the public domain
// its tunnel URLs live under. Custom and test have no domain, so cleanup is
// not available for them.
var providerDomains = map[Service]string{
	ServiceExpose: "sharedwithexpose.com",
	ServiceNgrok:  "ngrok-free.app",
}

// runCleanup deletes every webhook on the store whose URL belongs to the
// selected provider's domain and reports the matched count.
func (c *Controller) runCleanup(ctx context.Context) int {
	domain, ok := providerDomains[c.opts.Service]
	if !ok {
		log.Error().
			Str("service", string(c.opts.Service)).
			Msg("Cleanup is only available for the expose and ngrok services")
		return 1
	}

	count, err := c.cleanup(ctx, domain)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list webhooks for cleanup")
		return 1
	}

	if count == 0 {
		log.Info().Str("domain", domain).Msg("No webhooks to clean up")
	} else {
		log.Info().Int("count", count).Str("domain", domain).Msg("Cleanup finished")
	}
	return 0
}

// cleanup lists all webhooks, deletes those hosted under domain, and returns
// how many matched. Per-item deletion failures are reported and do not stop
// the sweep.
func (c *Controller) cleanup(ctx context.Context, domain string) (int, error) {
	webhooks, err := c.registry.ListWebhooks(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for id, webhookURL := range webhooks {
		if !hostedUnder(webhookURL, domain) {
			continue
		}
		count++

		if err := c.registry.DeleteWebhook(ctx, id); err != nil {
			log.Error().Err(err).Str("id", id).Str("url", webhookURL).Msg("Failed to delete webhook")
			continue
		}
		log.Info().Str("id", id).Str("url", webhookURL).Msg("Deleted orphaned webhook")
	}

	return count, nil
}

// hostedUnder reports whether rawURL's host is domain or a subdomain of it.
func hostedUnder(rawURL, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	return host == domain || strings.HasSuffix(host, "."+domain)
}
