package llm

// Provider describes one remote chat-completion endpoint. The table the
// client holds is built once at startup and never mutated; order in the
// table is the fallback order.
type Provider struct {
	ID      string
	BaseURL string
	Model   string
	APIKey  string
}

// Credentialed reports whether the provider can be attempted at all.
// Providers without a key are skipped entirely, never counted as failures.
func (p Provider) Credentialed() bool {
	return p.APIKey != ""
}

// headersFor builds request headers for a provider id. Every provider
// currently speaks the OpenAI header dialect; keyed by id so a divergent
// provider only needs a new case here.
func headersFor(providerID, apiKey string) map[string]string {
	switch providerID {
	default:
		return map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  "application/json",
		}
	}
}
