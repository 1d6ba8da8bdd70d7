// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"time"

	"github.com/jordansekky/cereal/internal/chapter"
)

// dailyGrindNewChapterProvider is a discovery-only placeholder (spec.md
// §4.A): the source module is declared in the original but never carried
// an implementation, so Discovery ticks against it are a deliberate no-op
// rather than an error.
type dailyGrindNewChapterProvider struct{}

func (p *dailyGrindNewChapterProvider) FetchNewChapters(_ context.Context, _ string, _ *time.Time) ([]chapter.NewChapter, error) {
	return nil, nil
}
