// Package providers defines the answer-producing capability behind the
// pipeline and its built-in implementations.
//
// The pipeline treats the provider purely as an interface: one Answer method
// plus an identity. It applies no retry logic of its own; timeouts and
// retries are owned by each implementation. The provider is never invoked
// when the governance mode is PROJECT.
//
// Two implementations ship with the runtime:
//
//   - Echo: a deterministic offline stub that restates the request and the
//     supplied evidence. Useful for demos and tests.
//   - OpenAI: a chat-completions HTTP adapter that enforces governance in
//     its prompt and clamps the token ceiling when damping is applied.
package providers
