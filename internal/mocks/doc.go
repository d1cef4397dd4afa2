// Package mocks provides shared test doubles.
//
// Store mocks use testify/mock and are configured with On/Return. Service
// mocks use function fields so handler tests can stub only what they call:
//
//	svc := &mocks.MockTaskService{
//	    GetFn: func(ctx context.Context, id int64) (*domain.Task, error) {
//	        return nil, service.ErrTaskNotFound
//	    },
//	}
package mocks
