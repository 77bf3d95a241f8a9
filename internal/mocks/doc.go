// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, tests across
// packages share these implementations of the generation and store ports.
//
// Two styles are used. Function-field mocks (MockGenerator,
// MockTextGenerator) suit tests that only need canned behavior:
//
//	gen := &mocks.MockGenerator{
//	    GenerateAnswerFn: func(ctx context.Context, q *domain.Question) (string, error) {
//	        return "A", nil
//	    },
//	}
//
// testify mocks (MockQuestionStore) suit tests that assert on the exact
// calls made:
//
//	st := new(mocks.MockQuestionStore)
//	st.On("GetByID", mock.Anything, id).Return(question, nil)
//	...
//	st.AssertExpectations(t)
package mocks
