package models

import (
	"encoding/json"
	"testing"
)

func TestJobStatusTerminal(t *testing.T) {
	tests := map[JobStatus]bool{
		StatusSucceeded:  true,
		StatusFailed:     true,
		StatusInProgress: false,
		StatusNotFound:   false,
		StatusUnknown:    false,
		"ERROR: boom":    false,
	}
	for status, want := range tests {
		if got := status.Terminal(); got != want {
			t.Errorf("%q.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestExtractionJobJSON(t *testing.T) {
	tests := []struct {
		name string
		job  ExtractionJob
		want string
	}{
		{
			name: "succeeded with nothing extracted",
			job:  ExtractionJob{ID: "j1", Status: StatusSucceeded, Fields: map[string]string{}},
			want: `{"jobId":"j1","status":"SUCCEEDED","fields":{}}`,
		},
		{
			name: "succeeded with nil fields",
			job:  ExtractionJob{ID: "j1", Status: StatusSucceeded},
			want: `{"jobId":"j1","status":"SUCCEEDED","fields":{}}`,
		},
		{
			name: "succeeded with fields",
			job:  ExtractionJob{ID: "j1", Status: StatusSucceeded, Fields: map[string]string{"name": "Jane"}},
			want: `{"jobId":"j1","status":"SUCCEEDED","fields":{"name":"Jane"}}`,
		},
		{
			name: "failed omits fields",
			job:  ExtractionJob{ID: "j1", Status: StatusFailed, Error: "OCR failed: FAILED"},
			want: `{"jobId":"j1","status":"FAILED","error":"OCR failed: FAILED"}`,
		},
		{
			name: "in progress",
			job:  ExtractionJob{ID: "j1", Status: StatusInProgress},
			want: `{"jobId":"j1","status":"IN_PROGRESS"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.job)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(b) != tt.want {
				t.Fatalf("Marshal = %s, want %s", b, tt.want)
			}
		})
	}
}

func TestExtractionJobCloneIsIndependent(t *testing.T) {
	orig := ExtractionJob{Status: StatusSucceeded, Fields: map[string]string{"a": "1"}}
	c := orig.Clone()
	c.Fields["a"] = "2"
	if orig.Fields["a"] != "1" {
		t.Fatalf("Clone shares the fields map")
	}
}
