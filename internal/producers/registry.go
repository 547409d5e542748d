package producers

import "github.com/codelens/driftscan/internal/producer"

// DefaultRegistry returns a registry with all built-in producers
// registered.
func DefaultRegistry() *producer.Registry {
	reg := producer.NewRegistry()
	for _, p := range []producer.Producer{
		NewIssuesProducer(),
		NewDocsProducer(),
		NewCodeProducer(),
	} {
		if err := reg.Register(p); err != nil {
			panic(err) // built-in names are fixed, this cannot fail
		}
	}
	return reg
}
