package model

type Role string

const (
	//プラットフォーム管理者（全店舗の注文が見える）
	RoleAdmin Role = "ADMIN"
	//店舗オーナー
	RoleOwner Role = "OWNER"
	//店舗スタッフ
	RoleStaff Role = "STAFF"
)

// Actor は認証コラボレータから渡される操作者コンテキスト。
// EstablishmentID がnilの非管理者は自店舗スコープを持たない。
type Actor struct {
	Role            Role
	EstablishmentID *int64
	DisplayName     string
	Email           string
}

// IsAdmin は全店舗を見られるかどうか。
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanDelete は削除操作が許されるロールかどうか（ADMIN / OWNER のみ）。
func (a Actor) CanDelete() bool {
	return a.Role == RoleAdmin || a.Role == RoleOwner
}

// CanAccess は指定店舗の注文を見たり変更したりできるか。
// 管理者は全店舗、それ以外は自店舗のみ。スコープのない非管理者は常にfalse。
func (a Actor) CanAccess(establishmentID int64) bool {
	if a.IsAdmin() {
		return true
	}
	if a.EstablishmentID == nil {
		return false
	}
	return *a.EstablishmentID == establishmentID
}

// HistoryName は履歴に残す操作者名（不明なら固定ラベル）。
func (a Actor) HistoryName() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.Email != "" {
		return a.Email
	}
	return UnknownActorName
}
