package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type OhlcvTestSuite struct {
	suite.Suite
}

func TestOhlcvSuite(t *testing.T) {
	suite.Run(t, new(OhlcvTestSuite))
}

func (suite *OhlcvTestSuite) TestOhlcvStruct() {
	data := Ohlcv{
		Time:  1700000000,
		Open:  42000,
		High:  42500,
		Low:   41800,
		Close: 42300,
		Vol:   1234,
	}

	suite.Equal(1700000000.0, data.Time)
	suite.Equal(42000.0, data.Open)
	suite.Equal(42500.0, data.High)
	suite.Equal(41800.0, data.Low)
	suite.Equal(42300.0, data.Close)
	suite.Equal(1234.0, data.Vol)
}

func (suite *OhlcvTestSuite) TestCloneIsDeep() {
	db := OhlcvDB{
		"btc": {
			IntervalOneHour: {{Time: 1, Open: 2, High: 3, Low: 1, Close: 2, Vol: 10}},
		},
	}

	clone := db.Clone()
	clone["btc"][IntervalOneHour][0].Open = -1
	clone["eth"] = map[Interval][]Ohlcv{}

	suite.Equal(2.0, db["btc"][IntervalOneHour][0].Open)
	suite.NotContains(db, "eth")
}

func (suite *OhlcvTestSuite) TestCloneNil() {
	var db OhlcvDB
	suite.Nil(db.Clone())
}

func (suite *OhlcvTestSuite) TestMarketValues() {
	suite.Equal(Market("Crypto[Spot]"), MarketCryptoSpot)
	suite.Equal(Market("Stock[US]"), MarketStockUS)
}
