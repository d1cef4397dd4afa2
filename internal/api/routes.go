package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the task and user endpoints on r.
// Callers normally mount r under /api.
func RegisterRoutes(r chi.Router, tasks *TaskHandler, users *UserHandler) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", tasks.ListTasks)
		r.Post("/", tasks.CreateTask)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", tasks.GetTask)
			r.Patch("/", tasks.UpdateTask)
			r.Put("/", tasks.UpdateTask)
			r.Delete("/", tasks.DeleteTask)
		})
	})
	r.Get("/users", users.ListUsers)
}
