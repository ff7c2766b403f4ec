package cli

var ExecuteTasks = executeTasks
