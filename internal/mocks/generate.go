package mocks

//go:generate mockery --name EventSource --srcpkg github.com/aevon-lab/event-replay/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
