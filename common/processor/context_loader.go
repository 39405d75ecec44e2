package processor

import (
	_ "embed" // required for go:embed
	"encoding/json"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// nolint:gochecknoglobals // embedded contexts
var (
	//go:embed contexts/credentials-v1.jsonld
	credentialsV1Vocab []byte
	//go:embed contexts/revocation-list-2020-v1.jsonld
	revocationList2020Vocab []byte
)

var embedContexts = map[string][]byte{
	"https://www.w3.org/2018/credentials/v1":      credentialsV1Vocab,
	"https://w3id.org/vc-revocation-list-2020/v1": revocationList2020Vocab,
}

// cachingDocumentLoader serves embedded context documents and falls back to
// the default loader for anything not cached.
type cachingDocumentLoader struct {
	cache    map[string]*ld.RemoteDocument
	fallback ld.DocumentLoader
}

// NewDocumentLoader returns a JSON-LD document loader with the W3C
// credentials and revocation-list contexts preloaded, so signing and
// verification do not depend on remote context hosts.
func NewDocumentLoader() (ld.DocumentLoader, error) {
	cache := make(map[string]*ld.RemoteDocument, len(embedContexts))

	for url, content := range embedContexts {
		var doc interface{}
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse embedded context %s: %w", url, err)
		}
		cache[url] = &ld.RemoteDocument{
			DocumentURL: url,
			Document:    doc,
		}
	}

	return &cachingDocumentLoader{
		cache:    cache,
		fallback: ld.NewDefaultDocumentLoader(nil),
	}, nil
}

func (l *cachingDocumentLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if doc, ok := l.cache[u]; ok {
		return doc, nil
	}
	return l.fallback.LoadDocument(u)
}
