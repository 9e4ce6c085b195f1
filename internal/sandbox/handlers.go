package sandbox

import (
	"net/http"
	"strings"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	userFields       = []string{"name", "email", "role", "phone", "skills"}
	employeeFields   = []string{"user_id", "name", "email", "phone", "trade", "skills", "hourly_rate", "status"}
	siteFields       = []string{"name", "location", "latitude", "longitude", "status"}
	bookingFields    = []string{"client_id", "title", "description", "location", "required_skills", "start_date", "end_date", "budget", "status"}
	projectFields    = []string{"booking_id", "manager_id", "project_name", "start_date", "end_date", "notes", "status"}
	assignmentFields = []string{"project_id", "employee_id", "role_desc", "start_date", "end_date", "status"}
)

var validRoles = map[string]bool{"admin": true, "manager": true, "employee": true, "client": true}

var assignmentStatuses = map[string]bool{"assigned": true, "working": true, "completed": true, "rejected": true}

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(h), err
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	s.insertUser(w, r, "User registered")
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	s.insertUser(w, r, "User created")
}

func (s *Server) insertUser(w http.ResponseWriter, r *http.Request, okMsg string) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if missing(data, "name", "email", "password", "role") != "" {
		sendErr(ctx, w, http.StatusBadRequest, "Missing fields")
		return
	}
	if !validRoles[normalRole(data)] {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid role")
		return
	}

	hashed, err := hashPassword(data.str("password"))
	if err != nil {
		sendErr(ctx, w, http.StatusInternalServerError, "Register failed")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(data.str("email")))
	if len(s.db.users.where(func(u record) bool { return u.str("email") == email })) > 0 {
		sendErr(ctx, w, http.StatusBadRequest, "Email exists")
		return
	}

	u := record{"phone": nil, "skills": nil}
	apply(u, data, userFields...)
	u["email"] = email
	u["role"] = normalRole(data)
	u["password"] = hashed
	id := s.db.users.insert(u, s.now())

	sendJSON(ctx, w, http.StatusOK, map[string]any{"msg": okMsg, "id": id})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(data.str("email")))
	password := data.str("password")
	if email == "" || password == "" {
		sendErr(ctx, w, http.StatusBadRequest, "Email and password required")
		return
	}

	s.db.mu.Lock()
	var user record
	if found := s.db.users.where(func(u record) bool { return u.str("email") == email }); len(found) > 0 {
		user = found[0]
	}
	s.db.mu.Unlock()

	if user == nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid email")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.str("password")), []byte(password)) != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Wrong password")
		return
	}

	id := user.int("id")
	token, err := s.issueToken(id, user.str("role"))
	if err != nil {
		sendErr(ctx, w, http.StatusInternalServerError, "Login failed")
		return
	}

	sid := uuid.Must(uuid.NewV4()).String()
	s.mu.Lock()
	s.sessions[sid] = id
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sid, Path: "/", HttpOnly: true})

	delete(user, "password")
	sendJSON(ctx, w, http.StatusOK, map[string]any{"msg": "Login OK", "user": user, "token": token})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if ck, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, ck.Value)
		s.mu.Unlock()
	}
	sendMsg(r.Context(), w, "Logged out")
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	rows := s.db.users.where(nil, "password")
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, id, ok := s.mutationInput(w, r)
	if !ok {
		return
	}
	if _, set := data["role"]; set && !validRoles[normalRole(data)] {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid role")
		return
	}

	var hashed string
	if pw := data.str("password"); pw != "" {
		h, err := hashPassword(pw)
		if err != nil {
			sendErr(ctx, w, http.StatusInternalServerError, "Update failed")
			return
		}
		hashed = h
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u := s.db.users.find(id)
	if u == nil {
		sendErr(ctx, w, http.StatusNotFound, "User not found")
		return
	}

	changed := apply(u, data, userFields...)
	if changed {
		u["role"] = normalRole(u)
	}
	if hashed != "" {
		u["password"] = hashed
		changed = true
	}
	if !changed {
		sendErr(ctx, w, http.StatusBadRequest, "No fields to update")
		return
	}
	sendMsg(ctx, w, "User updated")
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.deleteFrom(w, r, func(st *store) *table { return &st.users }, "User")
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	rows := s.db.employees.where(nil)
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e := record{"status": "active", "phone": nil, "trade": nil, "skills": nil, "hourly_rate": nil, "user_id": nil}
	apply(e, data, employeeFields...)

	if uid, ok := toInt64(e["user_id"]); ok {
		u := s.db.users.find(uid)
		if u == nil {
			sendErr(ctx, w, http.StatusNotFound, "User not found")
			return
		}
		if e.str("name") == "" {
			e["name"] = u["name"]
		}
		if e.str("email") == "" {
			e["email"] = u["email"]
		}
	}
	if e.str("name") == "" {
		sendErr(ctx, w, http.StatusBadRequest, "Missing fields")
		return
	}
	if e.str("status") == "" {
		e["status"] = "active"
	}

	id := s.db.employees.insert(e, s.now())
	sendJSON(ctx, w, http.StatusOK, map[string]any{"msg": "Employee created", "id": id})
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	s.updateIn(w, r, func(st *store) *table { return &st.employees }, "Employee", employeeFields)
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	s.deleteFrom(w, r, func(st *store) *table { return &st.employees }, "Employee")
}

func (s *Server) listSites(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	rows := s.db.sites.where(nil)
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) createSite(w http.ResponseWriter, r *http.Request) {
	s.insertInto(w, r, func(st *store) *table { return &st.sites }, "Site", siteFields,
		record{"latitude": nil, "longitude": nil, "status": "open"}, "name", "location")
}

func (s *Server) updateSite(w http.ResponseWriter, r *http.Request) {
	s.updateIn(w, r, func(st *store) *table { return &st.sites }, "Site", siteFields)
}

func (s *Server) deleteSite(w http.ResponseWriter, r *http.Request) {
	s.deleteFrom(w, r, func(st *store) *table { return &st.sites }, "Site")
}

func newBooking() record {
	return record{
		"location": nil, "required_skills": nil, "start_date": nil,
		"end_date": nil, "budget": nil, "status": "pending",
	}
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	unassigned := r.URL.Query().Get("unassigned") == "1"

	s.db.mu.Lock()
	rows := s.db.bookings.where(func(b record) bool {
		if unassigned {
			id := b.int("id")
			return len(s.db.projects.where(func(p record) bool { return p.int("booking_id") == id })) == 0
		}
		return status == "" || b.str("status") == status
	})
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) myBookings(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r.Context()).int("id")

	s.db.mu.Lock()
	rows := s.db.bookings.where(func(b record) bool { return b.int("client_id") == me })
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if missing(data, "title", "description") != "" {
		sendErr(ctx, w, http.StatusBadRequest, "Missing fields")
		return
	}

	b := newBooking()
	apply(b, data, bookingFields...)
	b["client_id"] = currentUser(ctx).int("id")
	if b.str("status") == "" {
		b["status"] = "pending"
	}

	s.db.mu.Lock()
	s.db.bookings.insert(b, s.now())
	s.db.mu.Unlock()

	sendMsg(ctx, w, "Booking submitted")
}

// ownBooking finds id among the caller's bookings. Callers hold the lock.
func (s *Server) ownBooking(r *http.Request, id int64) record {
	b := s.db.bookings.find(id)
	if b == nil || b.int("client_id") != currentUser(r.Context()).int("id") {
		return nil
	}
	return b
}

func (s *Server) updateOwnBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, id, ok := s.mutationInput(w, r)
	if !ok {
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b := s.ownBooking(r, id)
	if b == nil {
		sendErr(ctx, w, http.StatusNotFound, "Booking not found or access denied")
		return
	}
	delete(data, "client_id")
	if !apply(b, data, bookingFields...) {
		sendErr(ctx, w, http.StatusBadRequest, "No fields to update")
		return
	}
	sendMsg(ctx, w, "Booking updated")
}

func (s *Server) deleteOwnBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		sendErr(ctx, w, http.StatusNotFound, "Booking not found or access denied")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.ownBooking(r, id) == nil {
		sendErr(ctx, w, http.StatusNotFound, "Booking not found or access denied")
		return
	}
	s.db.bookings.remove(id)
	sendMsg(ctx, w, "Booking deleted")
}

func (s *Server) cancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		sendErr(ctx, w, http.StatusNotFound, "Booking not found")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b := s.db.bookings.find(id)
	isAdmin := currentUser(ctx).str("role") == "admin"
	if b == nil || (!isAdmin && s.ownBooking(r, id) == nil) {
		sendErr(ctx, w, http.StatusNotFound, "Booking not found or access denied")
		return
	}
	if b.str("status") != "pending" && !isAdmin {
		sendErr(ctx, w, http.StatusBadRequest, "Only pending bookings can be cancelled")
		return
	}
	b["status"] = "rejected"
	sendMsg(ctx, w, "Booking cancelled")
}

// checkConflict reports approved or pending bookings at the same location
// whose dates overlap the requested range.
func (s *Server) checkConflict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	start, okStart := parseDay(data.str("start_time"))
	end, okEnd := parseDay(data.str("end_time"))
	if !okStart || !okEnd {
		sendErr(ctx, w, http.StatusBadRequest, "start_time and end_time required")
		return
	}
	location := strings.ToLower(strings.TrimSpace(data.str("location")))

	s.db.mu.Lock()
	conflicts := s.db.bookings.where(func(b record) bool {
		if st := b.str("status"); st != "pending" && st != "approved" {
			return false
		}
		if location != "" && strings.ToLower(b.str("location")) != location {
			return false
		}
		bs, ok1 := parseDay(b.str("start_date"))
		be, ok2 := parseDay(b.str("end_date"))
		return ok1 && ok2 && overlapDays(start, end, bs, be) > 0
	})
	s.db.mu.Unlock()

	sendJSON(ctx, w, http.StatusOK, map[string]any{"conflicts": conflicts})
}

func (s *Server) adminBookings(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	rows := s.db.bookings.where(nil)
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) adminCreateBooking(w http.ResponseWriter, r *http.Request) {
	s.insertInto(w, r, func(st *store) *table { return &st.bookings }, "Booking", bookingFields,
		newBooking(), "client_id", "title", "description")
}

func (s *Server) adminUpdateBooking(w http.ResponseWriter, r *http.Request) {
	s.updateIn(w, r, func(st *store) *table { return &st.bookings }, "Booking", bookingFields)
}

func (s *Server) adminDeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		sendErr(ctx, w, http.StatusNotFound, "Booking not found")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if !s.db.bookings.remove(id) {
		sendErr(ctx, w, http.StatusNotFound, "Booking not found")
		return
	}
	for _, p := range s.db.projects.where(func(p record) bool { return p.int("booking_id") == id }) {
		pid := p.int("id")
		s.db.assignments.removeWhere(func(a record) bool { return a.int("project_id") == pid })
		s.db.projects.remove(pid)
	}
	sendMsg(ctx, w, "Booking and related data deleted")
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r.Context())

	s.db.mu.Lock()
	var rows []record
	if me.str("role") == "employee" {
		mine := map[int64]bool{}
		for _, a := range s.db.assignments.rows {
			if a.int("employee_id") == me.int("id") {
				mine[a.int("project_id")] = true
			}
		}
		rows = s.db.projects.where(func(p record) bool { return mine[p.int("id")] })
	} else {
		rows = s.db.projects.where(nil)
	}
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if missing(data, "project_name", "booking_id") != "" {
		sendErr(ctx, w, http.StatusBadRequest, "Missing fields")
		return
	}

	p := record{"start_date": nil, "end_date": nil, "notes": nil, "status": "active"}
	apply(p, data, projectFields...)
	p["manager_id"] = currentUser(ctx).int("id")
	if p.str("status") == "" {
		p["status"] = "active"
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.db.bookings.find(p.int("booking_id")) == nil {
		sendErr(ctx, w, http.StatusNotFound, "Booking not found")
		return
	}
	id := s.db.projects.insert(p, s.now())
	sendJSON(ctx, w, http.StatusOK, map[string]any{"msg": "Project created", "project_id": id})
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	s.updateIn(w, r, func(st *store) *table { return &st.projects }, "Project", projectFields)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		sendErr(ctx, w, http.StatusNotFound, "Project not found")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if !s.db.projects.remove(id) {
		sendErr(ctx, w, http.StatusNotFound, "Project not found")
		return
	}
	s.db.assignments.removeWhere(func(a record) bool { return a.int("project_id") == id })
	sendMsg(ctx, w, "Project and its assignments deleted")
}

func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r.Context())

	s.db.mu.Lock()
	rows := s.db.assignments.where(func(a record) bool {
		return me.str("role") != "employee" || a.int("employee_id") == me.int("id")
	})
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) allAssignments(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	rows := s.db.assignments.where(nil)
	for _, a := range rows {
		a["employee_name"] = nil
		a["project_name"] = nil
		a["booking_title"] = nil
		a["booking_location"] = nil

		if u := s.db.users.find(a.int("employee_id")); u != nil {
			a["employee_name"] = u["name"]
		}
		p := s.db.projects.find(a.int("project_id"))
		if p == nil {
			continue
		}
		a["project_name"] = p["project_name"]
		if b := s.db.bookings.find(p.int("booking_id")); b != nil {
			a["booking_title"] = b["title"]
			a["booking_location"] = b["location"]
		}
	}
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) createAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if missing(data, "project_id", "employee_id") != "" {
		sendErr(ctx, w, http.StatusBadRequest, "Missing fields")
		return
	}

	a := record{"role_desc": nil, "start_date": nil, "end_date": nil, "status": "assigned"}
	apply(a, data, assignmentFields...)
	a["assigned_by"] = currentUser(ctx).int("id")
	if a.str("status") == "" {
		a["status"] = "assigned"
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.db.users.find(a.int("employee_id")) == nil {
		sendErr(ctx, w, http.StatusNotFound, "Employee not found")
		return
	}
	id := s.db.assignments.insert(a, s.now())
	sendJSON(ctx, w, http.StatusOK, map[string]any{"msg": "Assigned", "assignment_id": id})
}

func (s *Server) updateAssignment(w http.ResponseWriter, r *http.Request) {
	s.updateIn(w, r, func(st *store) *table { return &st.assignments }, "Assignment", assignmentFields)
}

func (s *Server) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	s.deleteFrom(w, r, func(st *store) *table { return &st.assignments }, "Assignment")
}

func (s *Server) setAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, id, ok := s.mutationInput(w, r)
	if !ok {
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a := s.db.assignments.find(id)
	if a == nil || a.int("employee_id") != currentUser(ctx).int("id") {
		sendErr(ctx, w, http.StatusNotFound, "Assignment not found or access denied")
		return
	}
	status := data.str("status")
	if !assignmentStatuses[status] {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid status")
		return
	}
	a["status"] = status
	sendMsg(ctx, w, "Status updated")
}

func (s *Server) employeeTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	me := currentUser(ctx)
	if me.str("role") != "employee" {
		sendErr(ctx, w, http.StatusForbidden, "Access denied")
		return
	}

	s.db.mu.Lock()
	tasks := []record{}
	for _, a := range s.db.assignments.rows {
		if a.int("employee_id") != me.int("id") {
			continue
		}
		p := s.db.projects.find(a.int("project_id"))
		if p == nil {
			continue
		}
		b := s.db.bookings.find(p.int("booking_id"))
		if b == nil {
			continue
		}
		tasks = append(tasks, record{
			"id":               a["id"],
			"project_id":       a["project_id"],
			"role_desc":        a["role_desc"],
			"start_date":       a["start_date"],
			"end_date":         a["end_date"],
			"status":           a["status"],
			"created_at":       a["created_at"],
			"project_name":     p["project_name"],
			"booking_title":    b["title"],
			"booking_location": b["location"],
			"booking_start":    b["start_date"],
			"booking_end":      b["end_date"],
		})
	}
	s.db.mu.Unlock()

	sendJSON(ctx, w, http.StatusOK, tasks)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	count := func(t *table, key, value string) int {
		return len(t.where(func(rec record) bool { return key == "" || rec.str(key) == value }))
	}
	stats := map[string]int{
		"users":                 count(&s.db.users, "", ""),
		"employees":             count(&s.db.users, "role", "employee"),
		"managers":              count(&s.db.users, "role", "manager"),
		"clients":               count(&s.db.users, "role", "client"),
		"bookings":              count(&s.db.bookings, "", ""),
		"bookings_pending":      count(&s.db.bookings, "status", "pending"),
		"bookings_approved":     count(&s.db.bookings, "status", "approved"),
		"projects":              count(&s.db.projects, "", ""),
		"projects_active":       count(&s.db.projects, "status", "active"),
		"projects_completed":    count(&s.db.projects, "status", "completed"),
		"assignments":           count(&s.db.assignments, "", ""),
		"assignments_working":   count(&s.db.assignments, "status", "working"),
		"assignments_completed": count(&s.db.assignments, "status", "completed"),
	}
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, stats)
}

// mutationInput reads the path id and JSON body shared by updates.
func (s *Server) mutationInput(w http.ResponseWriter, r *http.Request) (record, int64, bool) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		sendErr(ctx, w, http.StatusNotFound, "Not found")
		return nil, 0, false
	}

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return nil, 0, false
	}
	return data, id, true
}

func (s *Server) insertInto(w http.ResponseWriter, r *http.Request, pick func(*store) *table, noun string,
	allowed []string, defaults record, required ...string) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		sendErr(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if missing(data, required...) != "" {
		sendErr(ctx, w, http.StatusBadRequest, "Missing fields")
		return
	}

	rec := defaults.clone()
	apply(rec, data, allowed...)
	if st, ok := defaults["status"]; ok && rec.str("status") == "" {
		rec["status"] = st
	}

	s.db.mu.Lock()
	id := pick(s.db).insert(rec, s.now())
	s.db.mu.Unlock()

	sendJSON(ctx, w, http.StatusOK, map[string]any{"msg": noun + " created", "id": id})
}

func (s *Server) updateIn(w http.ResponseWriter, r *http.Request, pick func(*store) *table, noun string, allowed []string) {
	ctx := r.Context()

	data, id, ok := s.mutationInput(w, r)
	if !ok {
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec := pick(s.db).find(id)
	if rec == nil {
		sendErr(ctx, w, http.StatusNotFound, noun+" not found")
		return
	}
	if !apply(rec, data, allowed...) {
		sendErr(ctx, w, http.StatusBadRequest, "No fields to update")
		return
	}
	sendMsg(ctx, w, noun+" updated")
}

func (s *Server) deleteFrom(w http.ResponseWriter, r *http.Request, pick func(*store) *table, noun string) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		sendErr(ctx, w, http.StatusNotFound, noun+" not found")
		return
	}

	s.db.mu.Lock()
	removed := pick(s.db).remove(id)
	s.db.mu.Unlock()

	if !removed {
		sendErr(ctx, w, http.StatusNotFound, noun+" not found")
		return
	}
	sendMsg(ctx, w, noun+" deleted")
}

func normalRole(r record) string {
	return strings.ToLower(strings.TrimSpace(r.str("role")))
}
