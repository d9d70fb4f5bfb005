package reminder

type OrderBy struct {
	v string
}

var (
	OrderByNotSet      OrderBy = OrderBy{}
	OrderByIDAsc       OrderBy = OrderBy{v: "id_asc"}
	OrderByRemindAtAsc OrderBy = OrderBy{v: "remind_at_asc"}
)
