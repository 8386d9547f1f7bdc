package club

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/models"
)

var (
	matchdayCostRate = decimal.NewFromFloat(0.20)
	debtInterestRate = decimal.NewFromFloat(0.05)
)

const (
	baseOccupancy = 0.70
	minOccupancy  = 0.10
	maxOccupancy  = 1.00
)

// Occupancy is the share of the stadium expected to be filled at the next
// home fixture
func (c *Club) Occupancy() float64 {
	occ := baseOccupancy
	occ += 0.03 * float64(c.ExpectationTier-1)
	streak := c.UnbeatenStreak
	if streak > 5 {
		streak = 5
	}
	occ += 0.02 * float64(streak)
	occ -= c.TeamInstability / 400
	occ -= 0.05 * float64(c.CrisisRisk)
	return models.Clamp(occ, minOccupancy, maxOccupancy)
}

// ProcessMatchRevenue books the gate of a home fixture net of matchday costs
// and returns the gross revenue
func (c *Club) ProcessMatchRevenue() decimal.Decimal {
	attendance := int64(math.Round(float64(c.StadiumCapacity) * c.Occupancy()))
	revenue := c.TicketPrice.Mul(decimal.NewFromInt(attendance))
	cost := revenue.Mul(matchdayCostRate)

	c.Balance = c.Balance.Add(revenue.Sub(cost))
	c.LastMatchRevenue = revenue

	c.logger.WithFields(logrus.Fields{
		"attendance": attendance,
		"revenue":    revenue.String(),
		"balance":    c.Balance.String(),
	}).Debug("Match revenue")
	return revenue
}

// ProcessMonthlyFinancials pays wages, collects sponsorship, charges interest
// on debt and reclassifies the financial status
func (c *Club) ProcessMonthlyFinancials() FinancialStatus {
	c.MonthlyWageBill = decimal.NewFromFloat(c.Squad.WageBill()).Round(0)

	c.Balance = c.Balance.Add(c.MonthlySponsorship).Sub(c.MonthlyWageBill)

	if c.Balance.IsNegative() {
		interest := c.Balance.Abs().Mul(debtInterestRate).Round(2)
		c.Balance = c.Balance.Sub(interest)
		c.adjustTrust(-2)
		c.adjustPressure(2)
		c.emit(Event{Kind: EventDebtInterest, Amount: interest})
	}

	previous := c.FinancialStatus
	c.FinancialStatus = c.classifyFinances()
	if c.FinancialStatus != previous {
		c.emit(Event{Kind: EventFinancialStatus, Amount: c.Balance, Detail: string(c.FinancialStatus)})
	}

	c.logger.WithFields(logrus.Fields{
		"balance":     c.Balance.String(),
		"wage_bill":   c.MonthlyWageBill.String(),
		"sponsorship": c.MonthlySponsorship.String(),
		"status":      c.FinancialStatus,
	}).Info("Monthly financials processed")
	return c.FinancialStatus
}

func (c *Club) classifyFinances() FinancialStatus {
	switch {
	case c.Balance.IsNegative():
		return FinancialIndebted
	case c.Balance.LessThan(c.MonthlyWageBill):
		return FinancialCritical
	case c.Balance.LessThan(c.MonthlyWageBill.Mul(decimal.NewFromInt(3))):
		return FinancialTight
	}
	return FinancialStable
}
