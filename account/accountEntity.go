package account

import (
	"skillbridge/domain"

	"github.com/fundwit/go-commons/types"
)

// User is the marketplace profile of a principal. Credentials live in the
// authentication service.
type User struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Name     string   `json:"name" gorm:"unique_index:uix_user_name"`
	Nickname string   `json:"nickname"`
	Role     string   `json:"role"`

	Skills     domain.Skills `json:"skills" sql:"type:TEXT"`
	BasePrice  int64         `json:"basePrice"`
	OpenToWork bool          `json:"openToWork"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

type UserCreation struct {
	ID         types.ID `json:"id"`
	Name       string   `json:"name" binding:"required,lte=32"`
	Nickname   string   `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Role       string   `json:"role" binding:"required,oneof=student teacher alumni admin"`
	Skills     []string `json:"skills" binding:"omitempty,dive,required,lte=50"`
	BasePrice  int64    `json:"basePrice" binding:"gte=0"`
	OpenToWork bool     `json:"openToWork"`
}

// ProfileUpdating changes only the fields present.
type ProfileUpdating struct {
	Nickname   *string   `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Skills     *[]string `json:"skills" binding:"omitempty,dive,required,lte=50"`
	BasePrice  *int64    `json:"basePrice" binding:"omitempty,gte=0"`
	OpenToWork *bool     `json:"openToWork"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	} else {
		return u.Name
	}
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	} else {
		return u.Name
	}
}
