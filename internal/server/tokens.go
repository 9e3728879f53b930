package server

// Token estimation mirrors the heuristic the AI backends bill by closely
// enough for dashboard purposes: a CJK rune is roughly one token, anything
// else averages four characters per token.

func estimateTokens(content string) int {
	var cjk, other int
	for _, r := range content {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}
	return cjk + (other+3)/4
}

func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // extension A
		return true
	case r >= 0x3040 && r <= 0x30FF: // hiragana, katakana
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // hangul syllables
		return true
	case r >= 0xF900 && r <= 0xFAFF: // compatibility ideographs
		return true
	}
	return false
}
