package rosnode

import (
	"reflect"
	"testing"
)

func TestFilterSelf(t *testing.T) {
	tests := []struct {
		name    string
		uris    []string
		selfURI string
		want    []string
	}{
		{
			name:    "self present is removed",
			uris:    []string{"http://a:1", "http://self:2", "http://b:3"},
			selfURI: "http://self:2",
			want:    []string{"http://a:1", "http://b:3"},
		},
		{
			name:    "self absent leaves list unchanged",
			uris:    []string{"http://a:1", "http://b:3"},
			selfURI: "http://self:2",
			want:    []string{"http://a:1", "http://b:3"},
		},
		{
			name:    "empty selfURI is a no-op",
			uris:    []string{"http://a:1"},
			selfURI: "",
			want:    []string{"http://a:1"},
		},
		{
			name:    "empty input",
			uris:    nil,
			selfURI: "http://self:2",
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSelf(tt.uris, tt.selfURI)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterSelf(%v, %q) = %v, want %v", tt.uris, tt.selfURI, got, tt.want)
			}
		})
	}
}
