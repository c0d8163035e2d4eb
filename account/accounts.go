package account

import (
	"context"
	"errors"
	"skillbridge/authority"
	"skillbridge/bizerror"
	"skillbridge/domain"
	"skillbridge/idgen"
	"skillbridge/persistence"
	"skillbridge/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	userIdWorker = idgen.NewWorker()

	CreateUserFunc    = CreateUser
	DetailUserFunc    = DetailUser
	UpdateProfileFunc = UpdateProfile

	QueryAccountNamesFunc = QueryAccountNames
)

func CreateUser(c *UserCreation, sec *session.Session) (*User, error) {
	if !sec.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	id := c.ID
	if id == 0 {
		id = idgen.NextID(userIdWorker)
	}
	user := User{ID: id, Name: c.Name, Nickname: c.Nickname, Role: c.Role,
		Skills: domain.NewSkills(c.Skills), BasePrice: c.BasePrice, OpenToWork: c.OpenToWork,
		CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func DetailUser(id types.ID, sec *session.Session) (*User, error) {
	return LoadUser(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
}

// LoadUser reads a profile with the given handle, which may be a transaction.
func LoadUser(db *gorm.DB, id types.ID) (*User, error) {
	user := User{}
	if err := db.Where(&User{ID: id}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUserNotFound
		}
		return nil, err
	}
	if user.Skills == nil {
		user.Skills = domain.Skills{}
	}
	return &user, nil
}

func UpdateProfile(userId types.ID, c *ProfileUpdating, sec *session.Session) (*User, error) {
	if !sec.Perms.IsAdmin() && userId != sec.Identity.ID {
		return nil, bizerror.ErrForbidden
	}

	var user *User
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		u, err := LoadUser(tx, userId)
		if err != nil {
			return err
		}
		changes := map[string]interface{}{}
		if c.Nickname != nil {
			changes["nickname"] = *c.Nickname
			u.Nickname = *c.Nickname
		}
		if c.Skills != nil {
			u.Skills = domain.NewSkills(*c.Skills)
			changes["skills"] = u.Skills
		}
		if c.BasePrice != nil {
			changes["base_price"] = *c.BasePrice
			u.BasePrice = *c.BasePrice
		}
		if c.OpenToWork != nil {
			changes["open_to_work"] = *c.OpenToWork
			u.OpenToWork = *c.OpenToWork
		}
		if len(changes) > 0 {
			if err := tx.Model(&User{}).Where(&User{ID: userId}).Updates(changes).Error; err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func QueryAccountNames(ctx context.Context, ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}

// EnsureAdminProfile creates the bootstrap administrator profile when it is missing.
func EnsureAdminProfile(ctx context.Context, id types.ID, name string) error {
	if id == 0 {
		return nil
	}
	return persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := LoadUser(tx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, bizerror.ErrUserNotFound) {
			return err
		}
		admin := User{ID: id, Name: name, Role: authority.RoleAdmin, Skills: domain.Skills{}, CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		logrus.Infof("administrator profile %s(%d) created", name, id)
		return nil
	})
}
