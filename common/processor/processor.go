package processor

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

const (
	format           = "application/n-quads"
	defaultAlgorithm = "URDNA2015"
)

// Processor is a JSON-LD processor for verifiable documents.
type Processor struct {
	algorithm string
}

// NewProcessor returns a new JSON-LD processor.
func NewProcessor(algorithm string) *Processor {
	if algorithm == "" {
		return Default()
	}
	return &Processor{algorithm}
}

// Default returns a new JSON-LD processor with the default RDF dataset algorithm.
func Default() *Processor {
	return &Processor{defaultAlgorithm}
}

// CanonicalizeDocument canonicalizes a JSON-LD document with the default processor.
func CanonicalizeDocument(doc map[string]interface{}) ([]byte, error) {
	return Default().GetCanonicalDocument(doc)
}

// GetCanonicalDocument returns the canonized form of the given JSON-LD document.
func (p *Processor) GetCanonicalDocument(doc map[string]interface{}) ([]byte, error) {
	loader, err := NewDocumentLoader()
	if err != nil {
		return nil, err
	}

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Algorithm = p.algorithm
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true
	ldOptions.DocumentLoader = loader

	proc := ld.NewJsonLdProcessor()

	view, err := proc.Normalize(doc, ldOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize JSON-LD document: %w", err)
	}

	result, ok := view.(string)
	if !ok {
		return nil, errors.New("failed to normalize JSON-LD document, invalid view")
	}

	return []byte(result), nil
}

// ComputeDigest computes the SHA-256 digest of the given data.
func ComputeDigest(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}
