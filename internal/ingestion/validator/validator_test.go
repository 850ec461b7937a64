package validator

import (
	"errors"
	"testing"

	"github.com/mkraev/ranked-search-platform/internal/ingestion"
)

func TestValidateIngestRequest(t *testing.T) {
	cases := []struct {
		name      string
		req       ingestion.IngestRequest
		wantField string
	}{
		{
			name: "valid",
			req:  ingestion.IngestRequest{DocumentID: 1, Text: "cat in the city", Status: "ACTUAL", Ratings: []int{1, 2}},
		},
		{
			name: "empty status defaults to actual",
			req:  ingestion.IngestRequest{DocumentID: 1, Text: "cat"},
		},
		{
			name:      "negative id",
			req:       ingestion.IngestRequest{DocumentID: -3, Text: "cat"},
			wantField: "document_id",
		},
		{
			name:      "empty text",
			req:       ingestion.IngestRequest{DocumentID: 1, Text: "   "},
			wantField: "text",
		},
		{
			name:      "control character",
			req:       ingestion.IngestRequest{DocumentID: 1, Text: "ca\x01t"},
			wantField: "text",
		},
		{
			name:      "unknown status",
			req:       ingestion.IngestRequest{DocumentID: 1, Text: "cat", Status: "ARCHIVED"},
			wantField: "status",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateIngestRequest(&tc.req)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateIngestRequest = %v, want nil", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if _, ok := vErr.Fields[tc.wantField]; !ok {
				t.Errorf("fields = %v, want %q flagged", vErr.Fields, tc.wantField)
			}
		})
	}
}
