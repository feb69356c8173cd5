package models

// All lists every persisted entity in dependency order for migration.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&Department{},
		&RehberGroup{},
		&User{},
		&Project{},
		&Sprint{},
		&Issue{},
		&Comment{},
		&Notification{},
	}
}
