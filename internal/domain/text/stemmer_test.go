package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorterStemmer_Stem(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"caresses", "caress"},
		{"ponies", "poni"},
		{"ties", "ti"},
		{"caress", "caress"},
		{"cats", "cat"},
		{"feed", "feed"},
		{"agreed", "agre"},
		{"plastered", "plaster"},
		{"bled", "bled"},
		{"motoring", "motor"},
		{"sing", "sing"},
		{"running", "run"},
		{"hopping", "hop"},
		{"falling", "fall"},
		{"happy", "happi"},
		{"happiness", "happi"},
		{"sky", "sky"},
		{"relational", "relat"},
		{"conditional", "condit"},
		{"vomiting", "vomit"},
		{"bleeding", "bleed"},
		{"diarrhea", "diarrhea"},
		{"remission", "remiss"},
		{"adoption", "adopt"},
		{"effective", "effect"},
		{"it", "it"},
		{"", ""},
	}
	p := PorterStemmer{}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Stem(tt.token))
		})
	}
}

func TestPorterStemmer_InflectionsCollapse(t *testing.T) {
	p := PorterStemmer{}
	assert.Equal(t, p.Stem("bleeding"), p.Stem("bleeds"))
	assert.Equal(t, p.Stem("cramping"), p.Stem("cramps"))
	assert.Equal(t, p.Stem("flaring"), p.Stem("flares"))
}

func TestPorterStemmer_StemAll(t *testing.T) {
	p := PorterStemmer{}
	assert.Equal(t, []string{"rectal", "bleed"}, p.StemAll([]string{"rectal", "bleeding"}))
	assert.Nil(t, p.StemAll(nil))
}

func TestStemmer_InterfaceCoversBatchStemming(t *testing.T) {
	var s Stemmer = PorterStemmer{}
	assert.Equal(t, []string{"stomach", "cramp"}, s.StemAll([]string{"stomach", "cramps"}))
	assert.Equal(t, "cramp", s.Stem("cramping"))
}
