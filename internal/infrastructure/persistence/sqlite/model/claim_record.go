package model

import "github.com/shopspring/decimal"

// ClaimRecord is the audit row. Rows are only ever inserted.
type ClaimRecord struct {
	RecordID      uint64          `gorm:"column:record_id;primaryKey;autoIncrement"`
	ClaimRef      string          `gorm:"column:claim_ref;type:text;not null;index"`
	PolicyNumber  string          `gorm:"column:policy_number;type:text;not null;index"`
	ClaimantName  string          `gorm:"column:claimant_name;type:text;not null"`
	ClaimantEmail string          `gorm:"column:claimant_email;type:text;not null"`
	DateOfLoss    string          `gorm:"column:date_of_loss;type:text;not null"`
	Location      string          `gorm:"column:location;type:text;not null"`
	Category      string          `gorm:"column:category;type:text;not null"`
	Estimate      decimal.Decimal `gorm:"column:estimate;type:decimal(20,2);not null"`
	WeatherOK     bool            `gorm:"column:weather_ok;not null;default:0"`
	Approved      bool            `gorm:"column:approved;not null;default:0"`
	Reason        string          `gorm:"column:reason;type:text;not null"`
	TransactionID *string         `gorm:"column:transaction_id;type:text"`
	CreatedAt     string          `gorm:"column:created_at;type:text;not null"`
}

func (ClaimRecord) TableName() string {
	return "claim_records"
}
