package adapters

import (
	"reflect"
	"testing"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single tag",
			text: "loving #golang today",
			want: []string{"golang"},
		},
		{
			name: "multiple tags lowercased",
			text: "#AI and #MachineLearning are everywhere",
			want: []string{"ai", "machinelearning"},
		},
		{
			name: "no tags",
			text: "plain text",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractHashtags(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractMentions(t *testing.T) {
	got := ExtractMentions("thanks @GoTeam and @rob_pike")
	want := []string{"goteam", "rob_pike"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := ExtractMentions("no mentions here"); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestExtractURLs(t *testing.T) {
	got := ExtractURLs("read https://go.dev/blog and http://example.com/x now")
	want := []string{"https://go.dev/blog", "http://example.com/x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
