package usecase

import (
	"sort"
	"strings"

	"github.com/pharmalens/backend/internal/domain"
)

// defaultMaxRankedLines bounds the assembled search string. The primary
// product name is printed largest on packaging, so the top few lines by
// height carry nearly all of the signal.
const defaultMaxRankedLines = 5

// RankLines orders OCR lines by pixel height descending and joins the
// text of the first maxLines with single spaces. The sort is stable:
// equal heights keep the provider's emission order (top-to-bottom,
// left-to-right). Empty input yields an empty string.
func RankLines(lines []domain.OcrLine, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if maxLines <= 0 {
		maxLines = defaultMaxRankedLines
	}

	ranked := make([]domain.OcrLine, len(lines))
	copy(ranked, lines)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].HeightPx > ranked[j].HeightPx
	})

	if len(ranked) > maxLines {
		ranked = ranked[:maxLines]
	}

	parts := make([]string, 0, len(ranked))
	for _, line := range ranked {
		parts = append(parts, line.Text)
	}

	return strings.Join(parts, " ")
}
