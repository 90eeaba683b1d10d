package cardtext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"ラティアスｅｘ　(SA)", "ラティアスex"},
		{"ラティアスex", "ラティアスex"},
		{"  ピカチュウGX(SA) ", "ピカチュウgx"},
		{"ブースターＶ", "ブースターv"},
		{"レシラム＆リザードンGX", "レシラム&リザードンgx"},
		{"【SAR】カシオペア", "sarカシオペア"},
		{"ナンジャモ☆", "ナンジャモ"},
		{"", ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeName(test.in), "input: %q", test.in)
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	names := []string{
		"ラティアスｅｘ　(SA)",
		"レシラム＆リザードンGX",
		"タケルライコex",
		"【PSA10】リーリエ",
	}
	for _, name := range names {
		once := NormalizeName(name)
		require.Equal(t, once, NormalizeName(once), "input: %q", name)
	}
}

func TestNormalizeForSearch(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"ピカチュウGX(SA)", "ピカチュウGX"},
		{"リザードン (HR)", "リザードン"},
		{"リザードン（SAR）", "リザードン"},
		{"ミュウツー (SA) (PR)", "ミュウツー"},
		{"レシラム＆リザードンGX", "レシラム&リザードンGX"},
		// (SA) in the middle is not a trailing qualifier
		{"ピカチュウ(SA)ミラー", "ピカチュウ(SA)ミラー"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeForSearch(test.in))
	}
}

func TestTokens(t *testing.T) {
	testCases := []struct {
		in       string
		expected []string
	}{
		{"タケルライコex", []string{"タケルライコ", "ex"}},
		{"カシオペアsv6a", []string{"カシオペア", "sv6a"}},
		{"タケルライコexsv5k", []string{"タケルライコ", "ex", "sv5k"}},
		{"レシラム&リザードンgx", []string{"レシラム&リザードン", "gx"}},
		{"pikachu", []string{"pikachu"}},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Tokens(test.in), "input: %q", test.in)
	}
}

func TestTokensAllIn(t *testing.T) {
	// rarity marker interleaved between name and set code
	require.True(t, TokensAllIn("カシオペアsv6a", "カシオペアsar091/064sv6a"))
	require.True(t, TokensAllIn("タケルライコex", "srタケルライコexsv5k"))
	require.False(t, TokensAllIn("カシオペアsv6a", "カシオペアsar091/064sv7"))
	require.False(t, TokensAllIn("", "カシオペア"))
}

func TestExtractCode(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"ピカチュウ 094/080", "094/080"},
		{"リーリエ 001/030", "001/030"},
		{"プロモ 260/SV-P", "260/SV-P"},
		{"強化拡張パック SV2a ピカチュウ", "SV2a"},
		{"ピカチュウ(見返り美人) 227/S-P", "227/S-P"},
		{"ただのカード名", ""},
		{"", ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, ExtractCode(test.in), "input: %q", test.in)
	}
}

func TestCodeInText(t *testing.T) {
	testCases := []struct {
		code     string
		text     string
		expected bool
	}{
		{"091/064", "カシオペア【SAR】{091/064}", true},
		{"091/064", "カシオペア 091-064 sv6a", true},
		{"091/064", "カシオペア 064-091", false},
		{"091/064", "カシオペア 091", false},
		{"227/S-P", "ピカチュウ 227/S-P プロモ", true},
		{"227/S-P", "ピカチュウ 227/SM-P プロモ", false},
		{"SV2a", "product/SV2a-123", true},
		{"", "なんでも", false},
		{"091/064", "", false},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, CodeInText(test.code, test.text),
			"code: %q text: %q", test.code, test.text)
	}
}
