// SPDX-License-Identifier: MPL-2.0

// Package jsmodule executes JavaScript config modules in an embedded goja
// runtime with a CommonJS require implementation.
//
// Every source file, the imported module and anything it requires by relative
// path, is passed through a Transform before execution. The native transform
// converts ES module syntax to CommonJS in-process; transpiler-backed loaders
// supply their own. A fresh runtime is created for every Import so nothing is
// cached between imports.
package jsmodule
