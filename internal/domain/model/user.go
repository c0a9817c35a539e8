package model

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	UserID      int     `gorm:"primaryKey;autoIncrement" json:"user_id"`
	UserName    string  `gorm:"not null;type:varchar(50)" json:"user_name"`
	UserEmail   string  `gorm:"unique;not null;type:varchar(50)" json:"user_email"`
	UserPhone   string  `gorm:"type:varchar(50)" json:"user_phone"`
	UserAddress string  `gorm:"type:varchar(255)" json:"user_address"`
	Role        Role    `gorm:"not null;type:varchar(20);default:'user'" json:"role"`
	Orders      []Order `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BaseModel
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
