package db

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ConnectNeo4j opens a driver against the property graph and verifies
// connectivity with a bounded check.
func ConnectNeo4j(uri, username, password string, timeout time.Duration) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = driver.VerifyConnectivity(ctx); err != nil {
		if closeErr := driver.Close(context.Background()); closeErr != nil {
			return nil, fmt.Errorf("failed to verify neo4j connectivity within %v: %w (close also failed: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to verify neo4j connectivity within %v: %w", timeout, err)
	}

	return driver, nil
}
