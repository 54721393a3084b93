package rbac

// DefaultPolicy lets trainers manage quizzes and rosters while students take
// quizzes. Admins hold every permission, including events:read.
var DefaultPolicy = Policy{
	"student": {
		"quiz:view",
		"attempt:start",
		"attempt:submit",
		"attempt:view-own",
		"user:change_password",
	},
	"trainer": {
		"quiz:create",
		"quiz:update",
		"quiz:delete",
		"quiz:view",
		"quiz:view-key",
		"attempt:view-all",
		"enrollment:manage",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
