// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscriber_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jordansekky/cereal/internal/subscriber"
)

/*
TestSubscriber_HasDeliveryChannel checks the "neither being set silences
delivery" rule (spec.md §3, §9).
*/
func TestSubscriber_HasDeliveryChannel(t *testing.T) {
	email := "reader@example.com"
	key := "pushover-key"

	tests := []struct {
		name string
		sub  subscriber.Subscriber
		want bool
	}{
		{"neither_set", subscriber.Subscriber{}, false},
		{"kindle_only", subscriber.Subscriber{KindleEmail: &email}, true},
		{"pushover_only", subscriber.Subscriber{PushoverKey: &key}, true},
		{"both_set", subscriber.Subscriber{KindleEmail: &email, PushoverKey: &key}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.HasDeliveryChannel())
		})
	}
}
