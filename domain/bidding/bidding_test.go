package bidding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowPhases(t *testing.T) {
	raisedAt := time.Unix(1700000000, 0)
	b := Bidding{
		Seller:      "0xseller",
		Buyer:       "0xbuyer",
		Price:       100,
		WindowStart: raisedAt.Add(CoolingPeriod),
		WindowEnd:   raisedAt.Add(CoolingPeriod + SettlePeriod),
	}

	// before the window opens raising is still allowed and settling is not
	assert.False(t, b.BlocksRaise(raisedAt))
	assert.False(t, b.BlocksRaise(raisedAt.Add(CoolingPeriod)))
	assert.False(t, b.InSettleWindow(raisedAt.Add(CoolingPeriod-time.Second)))

	// window bounds are inclusive for settling
	assert.True(t, b.InSettleWindow(b.WindowStart))
	assert.True(t, b.InSettleWindow(b.WindowEnd))

	// strictly inside the window raising is blocked
	inside := raisedAt.Add(CoolingPeriod + 50*time.Second)
	assert.True(t, b.BlocksRaise(inside))
	assert.True(t, b.InSettleWindow(inside))

	// past the window both close down
	after := b.WindowEnd.Add(time.Second)
	assert.False(t, b.BlocksRaise(after))
	assert.False(t, b.InSettleWindow(after))
}

func TestWindowZeroUntilFirstRaise(t *testing.T) {
	b := Bidding{Seller: "0xseller", Price: 100}
	assert.False(t, b.HasWindow())
	assert.False(t, b.BlocksRaise(time.Now()))
	assert.False(t, b.InSettleWindow(time.Now()))
}
