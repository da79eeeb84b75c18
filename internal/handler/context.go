package handler

type ContextKey string

var (
	SubCtxKey     ContextKey = "sub"
	MyInfoCtx     ContextKey = "myInfo"
	ScheduleCtx   ContextKey = "schedule"
	FilterCtx     ContextKey = "filter"
	IsAdminCtxKey ContextKey = "isAdmin"
)
