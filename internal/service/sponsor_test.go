package service

import "testing"

func TestIsSponsored(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]interface{}
		want   bool
	}{
		{
			name:   "nil record",
			record: nil,
			want:   false,
		},
		{
			name:   "organic record",
			record: map[string]interface{}{"url": "https://www.amazon.in/dp/B0TESTASIN", "title": "Mouse"},
			want:   false,
		},
		{
			name:   "ad infrastructure key",
			record: map[string]interface{}{"adId": "12345", "url": "https://www.amazon.in/dp/B0TESTASIN"},
			want:   true,
		},
		{
			name:   "sponsored logging url",
			record: map[string]interface{}{"sponsoredLoggingUrl": "https://tracking.example/log"},
			want:   true,
		},
		{
			name:   "sspa routing url",
			record: map[string]interface{}{"url": "https://www.amazon.in/sspa/click?ie=UTF8"},
			want:   true,
		},
		{
			name:   "sp_atk marker case insensitive",
			record: map[string]interface{}{"url": "https://www.amazon.in/dp/B0TESTASIN?SP_ATK=abc"},
			want:   true,
		},
		{
			name:   "dom ad flag",
			record: map[string]interface{}{"data_sponsored": true, "url": "https://www.amazon.in/dp/B0TESTASIN"},
			want:   true,
		},
		{
			name:   "dom ad flag false is organic",
			record: map[string]interface{}{"data_sponsored": false, "url": "https://www.amazon.in/dp/B0TESTASIN"},
			want:   false,
		},
		{
			name:   "disclosure label",
			record: map[string]interface{}{"labels": "Sponsored result", "url": "https://www.amazon.in/dp/B0TESTASIN"},
			want:   true,
		},
		{
			name:   "aria label",
			record: map[string]interface{}{"aria_label": "View Sponsored product", "url": "https://www.amazon.in/dp/B0TESTASIN"},
			want:   true,
		},
		{
			name:   "empty ad key does not trigger",
			record: map[string]interface{}{"adId": "", "url": "https://www.amazon.in/dp/B0TESTASIN"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSponsored(tt.record); got != tt.want {
				t.Errorf("IsSponsored() = %v, want %v", got, tt.want)
			}
		})
	}
}
