package repository

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	bCtx "github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/domain/proceeds"
	"github.com/Alanle1011/contract-marketplace/service/query"
)

var timeNow = time.Now

type payoutGateway struct {
	q query.Mongo
}

// NewPayoutGateway records executed transfers as durable payout
// documents. The actual currency movement happens out of process, a
// failed insert is treated as a failed transfer so the withdrawal
// aborts instead of losing the record.
func NewPayoutGateway(q query.Mongo) proceeds.FundGateway {
	return &payoutGateway{q: q}
}

func (g *payoutGateway) Transfer(c bCtx.Ctx, to domain.Address, amount uint64, kind proceeds.PayoutKind) (*proceeds.Payout, error) {
	p := &proceeds.Payout{
		Id:        uuid.NewString(),
		To:        to.ToLower(),
		Amount:    amount,
		Kind:      kind,
		CreatedAt: timeNow(),
	}
	if err := g.q.Insert(c, domain.TablePayouts, p); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"payout": p,
		}).Error("q.Insert failed")
		return nil, err
	}
	return p, nil
}

func (g *payoutGateway) Revert(c bCtx.Ctx, p *proceeds.Payout) error {
	if err := g.q.Remove(c, domain.TablePayouts, bson.M{"id": p.Id}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"payout": p,
		}).Error("q.Remove failed")
		return err
	}
	return nil
}
