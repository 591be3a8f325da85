package types

import "fmt"

// DocumentType represents the kind of knowledge base document
type DocumentType string

const (
	DocumentTypeCarrierScorecard  DocumentType = "carrier_scorecard"
	DocumentTypeQuestionScorecard DocumentType = "question_scorecard"
	DocumentTypeResearch          DocumentType = "research"
	DocumentTypeProductionHistory DocumentType = "production_history"
)

// AllDocumentTypes returns all valid document types
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeCarrierScorecard,
		DocumentTypeQuestionScorecard,
		DocumentTypeResearch,
		DocumentTypeProductionHistory,
	}
}

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeCarrierScorecard,
		DocumentTypeQuestionScorecard,
		DocumentTypeResearch,
		DocumentTypeProductionHistory:
		return true
	default:
		return false
	}
}

// String returns the string representation of the document type
func (t DocumentType) String() string {
	return string(t)
}

// ParseDocumentType parses a string into a DocumentType
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid document type: %s", s)
	}
	return t, nil
}
