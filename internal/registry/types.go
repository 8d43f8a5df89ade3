package registry

// WebhookEvents is the fixed set of event types every webhook created by
// hooktail subscribes to. The registration is all-or-nothing; partial event
// updates are never issued.
var WebhookEvents = []string{
	"order_created",
	"order_refunded",
	"subscription_created",
	"subscription_updated",
	"subscription_cancelled",
	"subscription_resumed",
	"subscription_expired",
	"subscription_paused",
	"subscription_unpaused",
	"subscription_payment_failed",
	"subscription_payment_success",
	"subscription_payment_recovered",
	"subscription_payment_refunded",
	"subscription_plan_changed",
	"license_key_created",
	"license_key_updated",
}

// createRequest is the JSON:API body for POST /webhooks.
type createRequest struct {
	Data createData `json:"data"`
}

type createData struct {
	Type          string              `json:"type"`
	Attributes    createAttributes    `json:"attributes"`
	Relationships createRelationships `json:"relationships"`
}

type createAttributes struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

type createRelationships struct {
	Store relationship `json:"store"`
}

type relationship struct {
	Data relationshipData `json:"data"`
}

type relationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// webhookResource is one webhook entry in API responses.
type webhookResource struct {
	ID         string `json:"id"`
	Attributes struct {
		URL string `json:"url"`
	} `json:"attributes"`
}

// createResponse is the body of a successful POST /webhooks.
type createResponse struct {
	Data webhookResource `json:"data"`
}

// listResponse is one page of GET /webhooks.
type listResponse struct {
	Data []webhookResource `json:"data"`
	Meta struct {
		Page struct {
			CurrentPage int `json:"currentPage"`
			LastPage    int `json:"lastPage"`
		} `json:"page"`
	} `json:"meta"`
}
