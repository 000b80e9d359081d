package models

import "time"

// Signature records one participant's sign-off on an inspection record.
// A user may sign a record at most once.
type Signature struct {
	ID            string            `gorm:"column:signature_id;primaryKey;type:varchar(50)"`
	InspectionID  string            `gorm:"column:inspection_id;type:varchar(50);not null;uniqueIndex:idx_signature_once,priority:1"`
	Inspection    *InspectionRecord `gorm:"foreignKey:InspectionID"`
	UserID        string            `gorm:"column:user_id;type:varchar(50);not null;uniqueIndex:idx_signature_once,priority:2"`
	User          *User             `gorm:"foreignKey:UserID"`
	SignatureBlob string            `gorm:"column:signature_blob;type:text;not null"`
	SignedAt      time.Time         `gorm:"column:signed_at;autoCreateTime"`
}

// CategorySigner designates an additional required co-signer for every
// inspection of a category. The participant set of a record is its
// inspector plus the category's designated signers.
type CategorySigner struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Category string `gorm:"column:category;type:varchar(50);not null;uniqueIndex:idx_category_signer,priority:1"`
	UserID   string `gorm:"column:user_id;type:varchar(50);not null;uniqueIndex:idx_category_signer,priority:2"`
	User     *User  `gorm:"foreignKey:UserID"`
}
