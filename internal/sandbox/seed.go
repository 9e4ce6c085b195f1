package sandbox

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

func (s *Server) seed() {
	hashed, err := hashPassword(DemoPassword)
	if err != nil {
		panic(err)
	}

	now := s.now()
	db := s.db

	users := []record{
		{"name": "Alex Admin", "email": "admin@sitecrew.test", "role": "admin", "phone": nil, "skills": nil},
		{"name": "Morgan Manager", "email": "manager@sitecrew.test", "role": "manager", "phone": "555-0101", "skills": nil},
		{"name": "Eli Electrician", "email": "eli@sitecrew.test", "role": "employee", "phone": "555-0102", "skills": "Electrical, Wiring"},
		{"name": "Casey Carpenter", "email": "casey@sitecrew.test", "role": "employee", "phone": nil, "skills": "Carpentry"},
		{"name": "Chris Client", "email": "client@sitecrew.test", "role": "client", "phone": "555-0199", "skills": nil},
	}
	for _, u := range users {
		u["password"] = hashed
	}
	// ids: 1 admin, 2 manager, 3 eli, 4 casey, 5 client
	for _, u := range users {
		db.users.insert(u, now)
	}

	db.employees.insert(record{
		"user_id": int64(3), "name": "Eli Electrician", "email": "eli@sitecrew.test", "phone": "555-0102",
		"trade": "Electrician", "skills": "Electrical, Wiring", "hourly_rate": "42.50",
		"status": "active",
	}, now)
	db.employees.insert(record{
		"user_id": int64(4), "name": "Casey Carpenter", "email": "casey@sitecrew.test", "phone": nil,
		"trade": "Carpenter", "skills": "Carpentry", "hourly_rate": "35", "status": "active",
	}, now)

	db.sites.insert(record{"name": "Riverside Yard", "location": "Riverside", "latitude": "51.5072", "longitude": "-0.1276", "status": "open"}, now)
	db.sites.insert(record{"name": "Hilltop Depot", "location": "Hilltop", "latitude": nil, "longitude": nil, "status": "closed"}, now)

	db.bookings.insert(record{
		"client_id": int64(5), "title": "Office rewiring", "description": "Rewire the second floor",
		"location": "Riverside", "required_skills": "Electrical", "start_date": "2025-03-03", "end_date": "2025-03-14",
		"budget": "12500.00", "status": "approved",
	}, now)
	db.bookings.insert(record{
		"client_id": int64(5), "title": "Deck repair", "description": "Replace rotten boards",
		"location": "Hilltop", "required_skills": "Carpentry", "start_date": "2025-04-07", "end_date": "2025-04-09",
		"budget": nil, "status": "pending",
	}, now)
	db.bookings.insert(record{
		"client_id": int64(5), "title": "Kitchen fit-out", "description": "Cabinets and worktops",
		"location": nil, "required_skills": nil, "start_date": nil, "end_date": nil,
		"budget": "8000", "status": "rejected",
	}, now)

	db.projects.insert(record{
		"booking_id": int64(1), "manager_id": int64(2), "project_name": "Riverside rewiring",
		"start_date": "2025-03-03", "end_date": "2025-03-14", "notes": "Access via loading bay", "status": "active",
	}, now)

	db.assignments.insert(record{
		"project_id": int64(1), "employee_id": int64(3), "assigned_by": int64(2), "role_desc": "Lead electrician",
		"start_date": "2025-03-03", "end_date": "2025-03-07", "status": "working",
	}, now)
	db.assignments.insert(record{
		"project_id": int64(1), "employee_id": int64(4), "assigned_by": int64(2), "role_desc": "Cable trays",
		"start_date": "2025-03-10", "end_date": "2025-03-11", "status": "assigned",
	}, now)
}
