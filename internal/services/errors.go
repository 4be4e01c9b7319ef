package services

// Error kinds surfaced by the chat service. The handlers map each to an HTTP
// status; anything else becomes a generic internal error.

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

type ServiceUnavailableError struct{ Message string }

func (e *ServiceUnavailableError) Error() string { return e.Message }

type ModelNotFoundError struct{ Message string }

func (e *ModelNotFoundError) Error() string { return e.Message }

type InferenceError struct{ Message string }

func (e *InferenceError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type StoreError struct{ Message string }

func (e *StoreError) Error() string { return e.Message }
