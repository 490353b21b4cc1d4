package db

import (
	"context"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager serializes write access to the database. The swap and
// gateway_log writers each run on their own cadence; funnelling their
// statements through one worker keeps SQLite from seeing overlapping
// write transactions.
type DBManager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
	}

	go m.worker()

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			err := op.Execute()
			op.Result <- err
		case op := <-m.resultOpQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation executes a database operation on the worker
func (m *DBManager) ExecuteOperation(execute func() error) error {
	resultChan := make(chan error, 1)
	m.opQueue <- Operation{
		Execute: execute,
		Result:  resultChan,
	}
	return <-resultChan
}

// ExecuteOperationWithResult executes a database operation that returns a result
func (m *DBManager) ExecuteOperationWithResult(execute func() (interface{}, error)) (interface{}, error) {
	resultChan := make(chan OperationResult, 1)
	m.resultOpQueue <- OperationWithResult{
		Execute: execute,
		Result:  resultChan,
	}
	result := <-resultChan
	return result.Data, result.Error
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	close(m.stopping)
}

// Methods for specific repository operations

// RecordSwapTransition serializes access to swap transition writes
func (m *DBManager) RecordSwapTransition(repo SwapRepository, ctx context.Context, isp, ip string) (*models.SwapLogEntry, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.RecordTransition(ctx, isp, ip)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.SwapLogEntry), nil
}

// CreateGatewayLog serializes access to gateway log creation
func (m *DBManager) CreateGatewayLog(repo GatewayLogRepository, ctx context.Context, entry *models.GatewayLogEntry) error {
	return m.ExecuteOperation(func() error {
		return repo.Create(ctx, entry)
	})
}
