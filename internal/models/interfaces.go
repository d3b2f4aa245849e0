package models

// SyncableEntity is implemented by every entity the access layer mirrors
type SyncableEntity interface {
	GetEntityID() string
	GetEntityType() string
}

// RemoteModels lists the structs whose tables make up the remote schema
func RemoteModels() []interface{} {
	return []interface{}{
		&Job{},
		&Technician{},
		&AppSettings{},
		&PMPlan{},
		&FactoryHoliday{},
		&UserRoleProfile{},
		&BudgetItem{},
		&DailyExpense{},
		&StandardItem{},
	}
}
