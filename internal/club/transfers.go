package club

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/models"
)

var forcedSaleDiscount = decimal.NewFromFloat(0.90)

const (
	transferRequestMorale = 40.0
	transferRequestChance = 0.25
	forcedSaleChance      = 0.40
)

// ProcessTransferMarket revalues the squad, lets unhappy leaders ask to
// leave and, when the club is in debt, may force the sale of its most
// valuable player
func (c *Club) ProcessTransferMarket(status models.LeagueStatus) {
	for _, p := range c.Squad.Players {
		p.CalculateMarketValue(status)
		p.UpdateStayDesire(c.TeamInstability, c.CoachPressure, c.LastExpectation, c.Squad.IsStarter(p))
	}

	for _, p := range c.Squad.Players {
		if !p.IsLeader() || p.Morale >= transferRequestMorale {
			continue
		}
		if c.chance(transferRequestChance) {
			c.adjustInstability(3)
			c.adjustTrust(-1)
			c.emit(Event{Kind: EventTransferRequest, Player: p.Name, Magnitude: p.StayDesire})
			c.logger.WithField("player", p.Name).Info("Transfer request")
		}
	}

	if c.Balance.IsNegative() && c.chance(forcedSaleChance) {
		c.forceSale()
	}
}

func (c *Club) forceSale() {
	star := c.mostValuable()
	if star == nil {
		return
	}

	fee := star.MarketValue.Mul(forcedSaleDiscount).Round(0)
	rookie := models.NewRookie(fmt.Sprintf("%s Academy %s", c.Name, star.Position.Abbrev()), star.Position)
	if !c.Squad.ReplacePlayer(star, rookie) {
		return
	}

	c.Balance = c.Balance.Add(fee)
	c.MonthlyWageBill = decimal.NewFromFloat(c.Squad.WageBill()).Round(0)
	c.adjustInstability(5)
	c.adjustPressure(5)
	c.adjustTrust(-5)
	c.emit(Event{Kind: EventForcedSale, Player: star.Name, Amount: fee, Detail: rookie.Name})

	c.logger.WithFields(logrus.Fields{
		"player":  star.Name,
		"fee":     fee.String(),
		"balance": c.Balance.String(),
	}).Warn("Forced sale to cover debt")
}

func (c *Club) mostValuable() *models.Player {
	var best *models.Player
	for _, p := range c.Squad.Players {
		if best == nil || p.MarketValue.GreaterThan(best.MarketValue) {
			best = p
		}
	}
	return best
}
