package ossearch

// Boosts maps index field names to index-time boost factors.
type Boosts map[string]float64

// Index-time boost factors applied to domain-root documents.
const (
	NoSubdomainDomainBoost       = 5000
	NoSubdomainMetaKeywordsBoost = 800
	NoSubdomainTitleBoost        = 350
	SubdomainDomainBoost         = 1000
	SubdomainSubdomainBoost      = 600
	SubdomainMetaKeywordsBoost   = 400
)

// BoostFor computes the index-time boosts for a document. Only domain-root
// documents (empty path) are eligible; for any other document it returns
// nil and the document must not be re-added.
func BoostFor(d *Document) Boosts {
	if d.Path != "" {
		return nil
	}
	if d.Subdomain == "" || d.Subdomain == "www" {
		return Boosts{
			"domain":        NoSubdomainDomainBoost,
			"meta_keywords": NoSubdomainMetaKeywordsBoost,
			"title":         NoSubdomainTitleBoost,
		}
	}
	return Boosts{
		"domain":        SubdomainDomainBoost,
		"meta_keywords": SubdomainMetaKeywordsBoost,
		"subdomain":     SubdomainSubdomainBoost,
	}
}
