package condition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExcluded(t *testing.T) {
	testCases := []struct {
		text     string
		excluded bool
	}{
		{"リーリエ PSA10 鑑定品", true},
		{"リーリエ psa9", true},
		{"ピカチュウ ARS10", true},
		{"ピカチュウ BGS9", true},
		{"リザードン 鑑定済", true},
		{"リザードン グレード品", true},
		{"ナンジャモ 状態A-", true},
		{"ナンジャモ (状態B)", true},
		{"ナンジャモ【状態難】", true},
		{"ピカチュウex 094/080", false},
		{"カシオペア【SAR】", false},
		{"", false},
	}
	for _, test := range testCases {
		require.Equal(t, test.excluded, Excluded(test.text), "text: %q", test.text)
	}
}
