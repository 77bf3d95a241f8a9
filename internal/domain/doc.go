// Package domain contains the question entity whose answers and explanations
// the completion queue fills in, together with its status values and
// validation. It is independent of any storage or delivery mechanism.
package domain
